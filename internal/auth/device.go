package auth

import (
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

const (
	deviceOS = "win32"

	xvcPrefix = "JAYDEN"
	xvcSuffix = "JAYMOND"
)

// Device identifies the client installation to the server.
type Device struct {
	Name       string
	UUID       string
	Language   string
	AppVersion string
	OSVersion  string
}

// OS returns the client platform tag.
func (d Device) OS() string {
	return deviceOS
}

// UserAgent returns the User-Agent header sent to the account API.
func (d Device) UserAgent() string {
	return fmt.Sprintf("KT/%s Wd/%s %s", d.AppVersion, d.OSVersion, d.Language)
}

// AgentHeader returns the "A" header sent to the account API.
func (d Device) AgentHeader() string {
	return fmt.Sprintf("%s/%s/%s", deviceOS, d.AppVersion, d.Language)
}

// XVC computes the request verification hash for an account email.
func (d Device) XVC(email string) string {
	sum := sha512.Sum512([]byte(xvcPrefix + "|" + d.UserAgent() + "|" + xvcSuffix + "|" + email + "|" + d.UUID))
	return hex.EncodeToString(sum[:])[:16]
}

// NewDeviceUUID returns a fresh device identifier in the server's format.
func NewDeviceUUID() string {
	seed := uuid.New()
	sum := sha512.Sum512(seed[:])
	return base64.StdEncoding.EncodeToString(sum[:])
}
