package remote

import (
	"strings"

	"github.com/google/uuid"

	id "milsabores/pkg/domain"
)

// userIDNamespace maps non-UUID service ids (numeric database keys) onto
// stable UUIDs.
var userIDNamespace = uuid.MustParse("0b7e5d3c-8f4a-4c59-a1a6-2f9d6b3e7c10")

func parseUserID(raw string) (id.UserID, error) {
	if parsed, err := id.ParseUserID(raw); err == nil {
		return parsed, nil
	} else if strings.TrimSpace(raw) == "" {
		return id.UserID{}, err
	}
	return id.UserID(uuid.NewSHA1(userIDNamespace, []byte(raw))), nil
}
