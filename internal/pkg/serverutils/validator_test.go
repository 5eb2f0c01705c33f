package serverutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sampleRequest struct {
	Username string `validate:"required,min=3,max=50"`
	Email    string `validate:"required,email"`
	Sender   string `validate:"omitempty,oneof=user ai"`
}

func TestValidateStructPasses(t *testing.T) {
	err := ValidateStruct(&sampleRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Sender:   "user",
	})
	assert.NoError(t, err)
}

func TestValidateStructRequired(t *testing.T) {
	err := ValidateStruct(&sampleRequest{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "username is required")
	assert.Contains(t, err.Error(), "email is required")
}

func TestValidateStructMin(t *testing.T) {
	err := ValidateStruct(&sampleRequest{Username: "ab", Email: "a@b.co"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "username must be at least 3 characters")
}

func TestValidateStructEmail(t *testing.T) {
	err := ValidateStruct(&sampleRequest{Username: "alice", Email: "not-an-email"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "email must be a valid email")
}

func TestValidateStructOneOf(t *testing.T) {
	err := ValidateStruct(&sampleRequest{Username: "alice", Email: "a@b.co", Sender: "robot"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "sender must be one of: user ai")
}
