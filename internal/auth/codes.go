package auth

import (
	"crypto/rand"
	"math/big"
	"time"

	"github.com/ledgerkeep/ledgerkeep/internal/token"
)

const (
	codeDigits = 8
	codeTTL    = 5 * time.Minute
)

// CodeIssuer generates confirmation codes and wraps them in signed,
// time-limited tokens. Only the signed form is persisted; the raw code is
// recovered by verification whenever it must be emailed or compared, so a
// database read alone never discloses a valid code.
type CodeIssuer struct {
	signer *token.Signer
}

// NewCodeIssuer constructs a CodeIssuer.
func NewCodeIssuer(signer *token.Signer) *CodeIssuer {
	return &CodeIssuer{signer: signer}
}

// Issue generates a fresh code and returns its signed token.
func (i *CodeIssuer) Issue() (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", err
	}
	return i.signer.SignConfirmation(code, codeTTL)
}

// Reveal re-verifies the signed token and returns the embedded code.
// Malformed, tampered, or expired tokens surface token.ErrInvalid.
func (i *CodeIssuer) Reveal(signed string) (string, error) {
	return i.signer.VerifyConfirmation(signed)
}

// generateCode draws each digit independently uniform 0-9, so leading zeros
// are as likely as any other digit.
func generateCode() (string, error) {
	digits := make([]byte, codeDigits)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = '0' + byte(n.Int64())
	}
	return string(digits), nil
}
