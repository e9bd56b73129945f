/*
Package secret packs a portal login and password into a single opaque string
that can be stored next to a linked account and unpacked for unattended logins.

It is obfuscation, not encryption: anyone holding a secret can recover the
credentials without any key. Keep secrets out of logs and treat the store that
holds them as sensitive.
*/
package secret

import (
	"encoding/base64"
	"errors"
	"strings"
)

// keyMask is XORed over the login bytes before they are embedded in the secret
const keyMask = 42

// separator joins the encoded key and the encoded payload
const separator = "."

// errors
var (
	ErrInvalidCredentials = errors.New("secret: invalid credentials")
)

var encoding = base64.RawURLEncoding

// Encode packs the given login and password into a secret
func Encode(login, password string) (string, error) {
	key := []byte(login)
	if len(key) == 0 {
		return "", ErrInvalidCredentials
	}

	payload := append([]byte(password), key...)
	xor(payload, key)

	encodedKey := make([]byte, len(key))
	for i, b := range key {
		encodedKey[len(key)-1-i] = b ^ keyMask
	}
	return encoding.EncodeToString(encodedKey) + separator + encoding.EncodeToString(payload), nil
}

// Decode unpacks the login and password from the given secret
func Decode(secret string) (login, password string, err error) {
	encodedKey, encodedPayload, ok := strings.Cut(secret, separator)
	if !ok {
		return "", "", ErrInvalidCredentials
	}

	key, err := encoding.DecodeString(encodedKey)
	if err != nil || len(key) == 0 {
		return "", "", ErrInvalidCredentials
	}
	payload, err := encoding.DecodeString(encodedPayload)
	if err != nil || len(payload) < len(key) {
		return "", "", ErrInvalidCredentials
	}

	reverse(key)
	for i := range key {
		key[i] ^= keyMask
	}
	xor(payload, key)

	// the payload always ends with the login itself
	n := len(payload) - len(key)
	if string(payload[n:]) != string(key) {
		return "", "", ErrInvalidCredentials
	}
	return string(key), string(payload[:n]), nil
}

// xor applies the repeating key over buf in place
func xor(buf, key []byte) {
	for i := range buf {
		buf[i] ^= key[i%len(key)]
	}
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
