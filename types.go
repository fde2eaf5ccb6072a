package authgate

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Logger is the structured logger used across the gateway. Arguments
// after the message are key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Config holds the gateway options
type Config interface {
	GetSigningKey() string
	GetTokenTTL() time.Duration
	GetIssuer() string
	GetAuthScheme() string
	GetContextKey() string
}

// AccountStore resolves a token subject to an account. Missing accounts
// are reported with a not found error.
type AccountStore interface {
	FindBySubject(ctx context.Context, subject string) (*Principal, error)
}

// AccountRegistry is the store used by AccountService for registration and login
type AccountRegistry interface {
	AccountStore
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	CreateAccount(ctx context.Context, account NewAccount) (*Principal, error)
	FindCredentials(ctx context.Context, subject string) (*Credentials, error)
}

// Credentials is the login view of an account
type Credentials struct {
	Principal    *Principal
	Username     string
	PasswordHash string
}

// NewAccount is the record passed to AccountRegistry.CreateAccount
type NewAccount struct {
	Email        string
	Username     string
	DisplayName  string
	Country      string
	PasswordHash string
	Role         Role
	Enabled      bool
}

type defLogger struct{}

func (d defLogger) Debug(msg string, args ...any) {
	d.print("DBG", msg, args)
}

func (d defLogger) Info(msg string, args ...any) {
	d.print("INF", msg, args)
}

func (d defLogger) Warn(msg string, args ...any) {
	d.print("WRN", msg, args)
}

func (d defLogger) Error(msg string, args ...any) {
	d.print("ERR", msg, args)
}

func (d defLogger) print(level, msg string, args []any) {
	var b strings.Builder
	b.WriteString("[" + level + "] AUTHGATE " + msg)
	for i := 0; i < len(args); i += 2 {
		if i+1 < len(args) {
			fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
			continue
		}
		fmt.Fprintf(&b, " %v", args[i])
	}
	fmt.Println(b.String())
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// NoopLogger discards every log line
func NoopLogger() Logger {
	return noopLogger{}
}
