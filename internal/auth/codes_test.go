package auth

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ledgerkeep/ledgerkeep/internal/token"
)

func TestGenerateCodeShape(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := generateCode()
		require.NoError(t, err)
		require.Len(t, code, codeDigits)
		for _, c := range code {
			require.True(t, c >= '0' && c <= '9', "non-digit in code %q", code)
		}
		seen[code] = true
	}
	// 50 consecutive identical draws would mean the generator is broken.
	require.Greater(t, len(seen), 1)
}

func TestIssueAndReveal(t *testing.T) {
	issuer := NewCodeIssuer(token.NewSigner("secret"))
	signed, err := issuer.Issue()
	require.NoError(t, err)

	code, err := issuer.Reveal(signed)
	require.NoError(t, err)
	require.Len(t, code, codeDigits)
}

func TestRevealRejectsForeignSigner(t *testing.T) {
	signed, err := NewCodeIssuer(token.NewSigner("secret")).Issue()
	require.NoError(t, err)

	_, err = NewCodeIssuer(token.NewSigner("other")).Reveal(signed)
	require.ErrorIs(t, err, token.ErrInvalid)
}
