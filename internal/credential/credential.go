// Package credential encrypts ticket payloads and renders them as
// scannable QR codes. A scanner holding the same key can decode a
// credential fully offline; no network call is involved in verification.
package credential

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	qrcode "github.com/skip2/go-qrcode"
)

// Cipher modes for the credential payload.
//
// ModeGCM is the default: AES-256-GCM with a fresh random nonce per ticket,
// prepended to the ciphertext. ModeCBC is the legacy format (AES-256-CBC
// with the static configured IV and PKCS#7 padding) kept for fleets of
// scanners provisioned before the GCM migration; reusing one IV across
// tickets reveals equality of identical plaintext prefixes, which is why
// it is no longer the default.
const (
	ModeGCM = "gcm"
	ModeCBC = "cbc"
)

const gcmNonceSize = 12

// Payload is the only data embedded in a credential. Amount and item are
// deliberately excluded to minimize the exposed surface. TS is the
// issuance instant in unix milliseconds, as a decimal string.
type Payload struct {
	TicketID string `json:"ticket_id"`
	Email    string `json:"email"`
	TS       string `json:"ts"`
}

// Encoder encrypts ticket payloads and rasterizes them into QR PNGs.
// The key and IV are normalized to exactly 32 and 16 bytes (padded with
// '0', truncated when longer), matching what deployed scanners expect.
type Encoder struct {
	key    []byte
	iv     []byte
	mode   string
	qrSize int
}

func NewEncoder(key, iv, mode string, qrSize int) (*Encoder, error) {
	if mode == "" {
		mode = ModeGCM
	}
	if mode != ModeGCM && mode != ModeCBC {
		return nil, fmt.Errorf("unknown credential cipher mode %q", mode)
	}
	if qrSize <= 0 {
		qrSize = 256
	}

	return &Encoder{
		key:    normalizeSecret(key, 32),
		iv:     normalizeSecret(iv, aes.BlockSize),
		mode:   mode,
		qrSize: qrSize,
	}, nil
}

// Encode builds the credential for one ticket: encrypt the payload,
// hex-encode it, and render a QR code (highest error-correction level)
// as PNG bytes. Any failure aborts the ticket's issuance; a partial or
// garbled credential is never emitted.
func (e *Encoder) Encode(ticketID, email string, issuedAt time.Time) ([]byte, error) {
	data, err := e.EncryptPayload(ticketID, email, issuedAt)
	if err != nil {
		return nil, err
	}

	png, err := qrcode.Encode(data, qrcode.Highest, e.qrSize)
	if err != nil {
		return nil, fmt.Errorf("render qr: %w", err)
	}

	return png, nil
}

// EncryptPayload serializes and encrypts the ticket payload, returning the
// hex string that goes into the QR code.
func (e *Encoder) EncryptPayload(ticketID, email string, issuedAt time.Time) (string, error) {
	payload := Payload{
		TicketID: ticketID,
		Email:    email,
		TS:       strconv.FormatInt(issuedAt.UnixMilli(), 10),
	}
	// struct marshaling keeps a stable field order, so the plaintext is
	// deterministic for a given payload
	plain, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	block, err := aes.NewCipher(e.key)
	if err != nil {
		return "", fmt.Errorf("init cipher: %w", err)
	}

	var out []byte
	switch e.mode {
	case ModeGCM:
		gcm, err := cipher.NewGCM(block)
		if err != nil {
			return "", fmt.Errorf("init gcm: %w", err)
		}
		nonce := make([]byte, gcmNonceSize)
		if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
			return "", fmt.Errorf("nonce: %w", err)
		}
		out = gcm.Seal(nonce, nonce, plain, nil)
	case ModeCBC:
		padded := pkcs7Pad(plain, aes.BlockSize)
		out = make([]byte, len(padded))
		cipher.NewCBCEncrypter(block, e.iv).CryptBlocks(out, padded)
	}

	return hex.EncodeToString(out), nil
}

// DecryptPayload is the scanner-side inverse of EncryptPayload.
func (e *Encoder) DecryptPayload(data string) (*Payload, error) {
	ct, err := hex.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("hex decode: %w", err)
	}

	block, err := aes.NewCipher(e.key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}

	var plain []byte
	switch e.mode {
	case ModeGCM:
		gcm, err := cipher.NewGCM(block)
		if err != nil {
			return nil, fmt.Errorf("init gcm: %w", err)
		}
		if len(ct) < gcmNonceSize {
			return nil, fmt.Errorf("ciphertext shorter than nonce")
		}
		plain, err = gcm.Open(nil, ct[:gcmNonceSize], ct[gcmNonceSize:], nil)
		if err != nil {
			return nil, fmt.Errorf("decrypt: %w", err)
		}
	case ModeCBC:
		if len(ct) == 0 || len(ct)%aes.BlockSize != 0 {
			return nil, fmt.Errorf("ciphertext not block aligned")
		}
		plain = make([]byte, len(ct))
		cipher.NewCBCDecrypter(block, e.iv).CryptBlocks(plain, ct)
		plain, err = pkcs7Unpad(plain, aes.BlockSize)
		if err != nil {
			return nil, err
		}
	}

	var p Payload
	if err := json.Unmarshal(plain, &p); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}

	return &p, nil
}

// normalizeSecret pads s with '0' up to n bytes and truncates anything
// beyond, mirroring how scanner deployments derive the same key material.
func normalizeSecret(s string, n int) []byte {
	b := []byte(s)
	if len(b) >= n {
		return b[:n]
	}
	out := make([]byte, n)
	copy(out, b)
	for i := len(b); i < n; i++ {
		out[i] = '0'
	}
	return out
}

func pkcs7Pad(b []byte, blockSize int) []byte {
	pad := blockSize - len(b)%blockSize
	return append(b, bytes.Repeat([]byte{byte(pad)}, pad)...)
}

func pkcs7Unpad(b []byte, blockSize int) ([]byte, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("empty plaintext")
	}
	pad := int(b[len(b)-1])
	if pad == 0 || pad > blockSize || pad > len(b) {
		return nil, fmt.Errorf("invalid padding")
	}
	for _, c := range b[len(b)-pad:] {
		if int(c) != pad {
			return nil, fmt.Errorf("invalid padding")
		}
	}
	return b[:len(b)-pad], nil
}
