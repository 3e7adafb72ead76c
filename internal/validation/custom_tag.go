package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	roomNameRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{3,64}$`)
	identityRegex = regexp.MustCompile(`^[^\x00-\x1f]{1,64}$`)
)

func init() {
	MustRegisterGin("roomname", ValidateRoomName)
	MustRegisterGin("identity", ValidateIdentity)
	MustRegisterGinAlias("sessionid", "uuid4")
	MustRegisterGinAlias("ingresstype", "oneof=rtmp whip")
}

// ValidateRoomName validates room name format: 3-64 characters, alphanumeric with hyphens and underscores
func ValidateRoomName(fl validator.FieldLevel) bool {
	return roomNameRegex.MatchString(fl.Field().String())
}

// ValidateIdentity validates a viewer display name: 1-64 printable characters
func ValidateIdentity(fl validator.FieldLevel) bool {
	return identityRegex.MatchString(fl.Field().String())
}
