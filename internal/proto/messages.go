package proto

type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
	Title    string `json:"title,omitempty"`
}

// Token carries a bearer token; an empty Data means none was issued.
type Token struct {
	Data string `json:"data"`
}

type RegisterResponse struct {
	Success      bool   `json:"success"`
	TokenData    string `json:"tokenData,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

type WhoamiRequest struct{}

type User struct {
	Id    int64  `json:"id"`
	Login string `json:"login"`
	Title string `json:"title"`
}

type UserCanRequest struct {
	Permission string `json:"permission"`
}

type UserCanResponse struct {
	Allowed bool `json:"allowed"`
}
