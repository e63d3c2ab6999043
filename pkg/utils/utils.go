package utils

import (
	"net/mail"

	"golang.org/x/crypto/bcrypt"
)

// HashCost is the bcrypt cost used for passwords and card PINs.
var HashCost = bcrypt.DefaultCost

// HashSecret hashes a password or PIN using bcrypt.
func HashSecret(secret string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(secret), HashCost)
	return string(bytes), err
}

// CheckSecretHash compares a plain secret with a bcrypt hash.
func CheckSecretHash(secret, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}

// IsEmail returns true if the string is a valid email address.
func IsEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}
