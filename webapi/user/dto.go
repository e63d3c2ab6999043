package user

import (
	"time"

	"github.com/amirasaad/lendrix/pkg/domain/account"
	"github.com/amirasaad/lendrix/pkg/domain/user"
	accountweb "github.com/amirasaad/lendrix/webapi/account"
)

// RegisterRequest represents the request body for creating a new user.
type RegisterRequest struct {
	Username  string `json:"username" validate:"required,max=50,min=3"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,min=6,max=72"`
	Firstname string `json:"firstname" validate:"max=100"`
	Lastname  string `json:"lastname" validate:"max=100"`
	// DOB is YYYY-MM-DD.
	DOB      string `json:"dob" validate:"omitempty,datetime=2006-01-02"`
	Currency string `json:"currency" validate:"omitempty,len=3,alpha"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Firstname string    `json:"firstname"`
	Lastname  string    `json:"lastname"`
	Tag       string    `json:"tag"`
	DOB       string    `json:"dob,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type RegistrationResponse struct {
	User    UserResponse               `json:"user"`
	Account accountweb.AccountResponse `json:"account"`
}

func ToUserResponse(u *user.User) UserResponse {
	resp := UserResponse{
		ID:        u.ID.String(),
		Username:  u.Username,
		Email:     u.Email,
		Firstname: u.Firstname,
		Lastname:  u.Lastname,
		Tag:       u.Tag,
		CreatedAt: u.CreatedAt,
	}
	if !u.DOB.IsZero() {
		resp.DOB = u.DOB.Format(time.DateOnly)
	}
	return resp
}

func toRegistrationResponse(u *user.User, a *account.Account) RegistrationResponse {
	return RegistrationResponse{User: ToUserResponse(u), Account: accountweb.ToAccountResponse(a)}
}
