package domain

// Coordinate is a WGS84 latitude/longitude pair in degrees.
type Coordinate struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// Zone is a descriptive subdivision of a ward. It has no coordinate of its own.
type Zone struct {
	Name string `json:"name" yaml:"name"`
}

// Ward is the smallest administrative unit used for routing.
type Ward struct {
	Code      string     `json:"code" yaml:"code"`
	Name      string     `json:"name" yaml:"name"`
	SubCounty string     `json:"sub_county" yaml:"-"`
	Zones     []Zone     `json:"zones" yaml:"zones"`
	Center    Coordinate `json:"center" yaml:"center"`
}

// SubCounty groups wards.
type SubCounty struct {
	Name  string `json:"name" yaml:"name"`
	Wards []Ward `json:"wards" yaml:"wards"`
}
