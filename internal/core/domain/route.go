package domain

// Application paths the route guard redirects between.
const (
	PathHome         = "/"
	PathLogin        = "/login"
	PathRegister     = "/register"
	PathFarmer       = "/farmer"
	PathConsumer     = "/consumer"
	PathNGO          = "/ngo"
	PathAdoptFarm    = "/adopt-farm"
	PathUnauthorized = "/unauthorized"
)

// DashboardPath returns the landing dashboard for role, or "" when role is unknown.
func DashboardPath(role Role) string {
	switch role {
	case RoleFarmer:
		return PathFarmer
	case RoleConsumer:
		return PathConsumer
	default:
		return ""
	}
}
