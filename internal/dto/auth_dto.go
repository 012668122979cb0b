package dto

// RegisterRequest 注册请求
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,ckanname"`
	Password string `json:"password" binding:"required,min=8"`
	Email    string `json:"email" binding:"omitempty,email"`
	Fullname string `json:"fullname"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录响应；token 与 api_token_create 的结果同形
type LoginResponse struct {
	Token       string   `json:"token"`
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	ExpiresAt   string   `json:"expires_at"`
	User        UserInfo `json:"user"`
}

// UserInfo 用户信息
type UserInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Fullname string `json:"fullname,omitempty"`
	Email    string `json:"email,omitempty"`
	Sysadmin bool   `json:"sysadmin"`
	State    string `json:"state"`
}

// MeResponse 当前用户
type MeResponse struct {
	User UserInfo `json:"user"`
	// Capacity sysadmin 或 user
	Capacity string `json:"capacity"`
	// AuthHeader 调用动作接口时使用的请求头
	AuthHeader string `json:"auth_header"`
}
