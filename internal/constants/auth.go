package constants

const (
	InternalAuthHeader  = "X-Internal-Auth"
	AuthorizationHeader = "Authorization"
	BearerPrefix        = "Bearer "

	PlatformAdminRole  Role = "PLATFORM_ADMINISTRATOR"
	TenantOperatorRole Role = "TENANT_OPERATOR"
	MemberRole         Role = "MEMBER"
)

type Role string
