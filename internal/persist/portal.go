package persist

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/starford/crmai/internal/models"
)

// ShareKey returns the storage key of a portal share.
func ShareKey(token string) string {
	return PortalPrefix + token
}

// GetShare reads the share stored under token. A missing share matches apperr.ErrNotFound.
func (a *Adapter) GetShare(token string) (models.PortalShare, error) {
	var share models.PortalShare
	raw, err := a.store.Get(ShareKey(token))
	if err != nil {
		return share, fmt.Errorf("persist: share %s: %w", token, err)
	}
	if err := json.Unmarshal(raw, &share); err != nil {
		return share, fmt.Errorf("%w: share %s: %v", ErrCorrupt, token, err)
	}
	return share, nil
}

// PutShare writes share under its token.
func (a *Adapter) PutShare(share models.PortalShare) error {
	if err := share.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(share)
	if err != nil {
		return fmt.Errorf("persist: encode share: %w", err)
	}
	if err := a.store.Put(ShareKey(share.Token), raw); err != nil {
		return fmt.Errorf("persist: write share %s: %w", share.Token, err)
	}
	return nil
}

// ShareTokens lists the tokens of every stored share.
func (a *Adapter) ShareTokens() ([]string, error) {
	keys, err := a.store.Keys(PortalPrefix)
	if err != nil {
		return nil, fmt.Errorf("persist: list shares: %w", err)
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, strings.TrimPrefix(k, PortalPrefix))
	}
	return out, nil
}
