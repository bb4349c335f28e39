// Package auth decides who is calling and what they may do.
package auth

import (
	"errors"
	"time"
)

var (
	ErrUnauthorized = errors.New("auth: not authenticated")
	ErrForbidden    = errors.New("auth: permission denied")
	ErrBadPassword  = errors.New("auth: invalid login or password")
)

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleClerk      Role = "clerk"
	RoleAccountant Role = "accountant"
)

type Capability string

const (
	CapStockRead    Capability = "stock:read"
	CapStockWrite   Capability = "stock:write"
	CapPartiesRead  Capability = "parties:read"
	CapPartiesWrite Capability = "parties:write"
	CapFinanceRead  Capability = "finance:read"
	CapFinanceWrite Capability = "finance:write"
	CapFinanceAdmin Capability = "finance:approve"
	CapReportsRead  Capability = "reports:read"
)

// Principal is the authenticated caller.
type Principal struct {
	UserID int64  `json:"user_id"`
	Login  string `json:"login"`
	Role   Role   `json:"role"`
}

type User struct {
	ID           int64
	Login        string
	PasswordHash string
	FullName     string
	Role         Role
	Active       bool
	CreatedAt    time.Time
}

func (u User) Principal() Principal {
	return Principal{UserID: u.ID, Login: u.Login, Role: u.Role}
}
