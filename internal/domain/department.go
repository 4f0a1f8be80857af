package domain

// Department is a county department responsible for resolving tickets.
type Department string

const (
	DepartmentEnvironment     Department = "Environment"
	DepartmentWater           Department = "Water and Sanitation"
	DepartmentRoads           Department = "Roads and Transport"
	DepartmentHealth          Department = "Health Services"
	DepartmentPlanning        Department = "Urban Planning"
	DepartmentInspectorate    Department = "Inspectorate"
	DepartmentCustomerService Department = "Customer Service"
)

// AllDepartments lists every department in declaration order.
var AllDepartments = []Department{
	DepartmentEnvironment,
	DepartmentWater,
	DepartmentRoads,
	DepartmentHealth,
	DepartmentPlanning,
	DepartmentInspectorate,
	DepartmentCustomerService,
}

// Valid reports whether d is one of the known departments.
func (d Department) Valid() bool {
	for _, candidate := range AllDepartments {
		if candidate == d {
			return true
		}
	}
	return false
}

// DepartmentSource records whether the department came from automatic routing
// or from an explicit citizen choice.
type DepartmentSource string

const (
	DepartmentSourceAuto         DepartmentSource = "AUTO"
	DepartmentSourceUserOverride DepartmentSource = "USER_OVERRIDE"
)
