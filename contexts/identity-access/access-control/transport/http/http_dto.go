package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type GrantRoleRequest struct {
	ActorID string `json:"actor_id"`
	Role    string `json:"role"`
}

type RevokeRoleRequest struct {
	ActorID string `json:"actor_id"`
	Role    string `json:"role"`
}

type RoleGrantDTO struct {
	ActorID   string `json:"actor_id"`
	Role      string `json:"role"`
	GrantedBy string `json:"granted_by"`
	GrantedAt string `json:"granted_at"`
}

type ListRolesResponse struct {
	Status string         `json:"status"`
	Data   []RoleGrantDTO `json:"data"`
}

type StatusResponse struct {
	Status string `json:"status"`
}
