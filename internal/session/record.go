package session

import (
	"encoding/json"

	"milsabores/internal/auth/models"
	dErrors "milsabores/pkg/domain-errors"
)

// record is the persisted session: the identity and the credential token
// issued for it.
type record struct {
	Identity        *models.Identity `json:"identity"`
	CredentialToken string           `json:"credentialToken"`
}

func encodeRecord(identity models.Identity, token string) ([]byte, error) {
	data, err := json.Marshal(record{Identity: &identity, CredentialToken: token})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode session")
	}
	return data, nil
}

func decodeRecord(data []byte) (record, error) {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return record{}, dErrors.Wrap(err, dErrors.CodeValidation, "session record is not valid JSON")
	}
	if r.Identity == nil {
		return record{}, dErrors.New(dErrors.CodeValidation, "session record has no identity")
	}
	if err := r.Identity.Validate(); err != nil {
		return record{}, dErrors.Wrap(err, dErrors.CodeValidation, "session record has an invalid identity")
	}
	if r.CredentialToken == "" {
		return record{}, dErrors.New(dErrors.CodeValidation, "session record has no credential")
	}
	return r, nil
}
