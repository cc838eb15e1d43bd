package email

import (
	"bytes"
	"crypto"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"strings"

	msgauthdkim "github.com/emersion/go-msgauth/dkim"
)

// DKIMConfig selects the key used to sign outgoing SMTP messages.
type DKIMConfig struct {
	Selector string
	Domain   string // Defaults to the sender address domain
	KeyPath  string // PEM file
	KeyPEM   string // Inline PEM, wins over KeyPath
}

// DKIMSigner applies DKIM signatures to raw messages.
type DKIMSigner struct {
	domain     string
	selector   string
	key        crypto.Signer
	headerKeys []string
}

// NewDKIMSigner returns nil, nil when cfg is empty so signing stays optional.
func NewDKIMSigner(cfg DKIMConfig) (*DKIMSigner, error) {
	selector := strings.TrimSpace(cfg.Selector)
	keyPath := strings.TrimSpace(cfg.KeyPath)
	domain := strings.TrimSpace(cfg.Domain)

	if selector == "" && keyPath == "" && cfg.KeyPEM == "" && domain == "" {
		return nil, nil
	}
	if selector == "" {
		return nil, fmt.Errorf("dkim: SMTP_DKIM_SELECTOR is required when enabling DKIM")
	}

	var pemData []byte
	switch {
	case cfg.KeyPEM != "":
		pemData = []byte(cfg.KeyPEM)
	case keyPath != "":
		data, err := os.ReadFile(keyPath)
		if err != nil {
			return nil, fmt.Errorf("dkim: read private key: %w", err)
		}
		pemData = data
	default:
		return nil, fmt.Errorf("dkim: provide SMTP_DKIM_KEY_PATH or SMTP_DKIM_PRIVATE_KEY")
	}

	key, err := parsePrivateKey(pemData)
	if err != nil {
		return nil, fmt.Errorf("dkim: parse private key: %w", err)
	}

	return &DKIMSigner{
		domain:     strings.ToLower(domain),
		selector:   selector,
		key:        key,
		headerKeys: []string{"from", "to", "reply-to", "subject", "date", "mime-version", "content-type"},
	}, nil
}

// Sign returns message with a DKIM-Signature header prepended. A nil signer
// returns the message unchanged.
func (s *DKIMSigner) Sign(message []byte, from string) ([]byte, error) {
	if s == nil || s.key == nil {
		return message, nil
	}

	domain := s.domain
	if domain == "" {
		domain = domainOf(from)
	}
	if domain == "" {
		return nil, fmt.Errorf("dkim: unable to determine signing domain")
	}

	opts := &msgauthdkim.SignOptions{
		Domain:                 domain,
		Selector:               s.selector,
		Signer:                 s.key,
		HeaderCanonicalization: msgauthdkim.CanonicalizationRelaxed,
		BodyCanonicalization:   msgauthdkim.CanonicalizationRelaxed,
		HeaderKeys:             s.headerKeys,
	}

	var signed bytes.Buffer
	if err := msgauthdkim.Sign(&signed, bytes.NewReader(message), opts); err != nil {
		return nil, fmt.Errorf("dkim: signing failed: %w", err)
	}
	return signed.Bytes(), nil
}

func parsePrivateKey(pemData []byte) (crypto.Signer, error) {
	for {
		block, rest := pem.Decode(pemData)
		if block == nil {
			break
		}
		switch block.Type {
		case "RSA PRIVATE KEY":
			key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
			if err != nil {
				return nil, err
			}
			return key, nil
		case "PRIVATE KEY":
			key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
			if err != nil {
				return nil, err
			}
			if signer, ok := key.(crypto.Signer); ok {
				return signer, nil
			}
			return nil, fmt.Errorf("unsupported private key type in PKCS#8 container")
		}
		pemData = rest
	}
	return nil, fmt.Errorf("no private key found in PEM data")
}

func domainOf(address string) string {
	address = strings.Trim(strings.TrimSpace(address), "<>")
	if i := strings.LastIndex(address, "@"); i >= 0 && i+1 < len(address) {
		return strings.ToLower(address[i+1:])
	}
	return ""
}
