// Package signer canonicalizes request parameters and computes the
// request signature.
package signer

import (
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec // the API mandates HMAC-SHA1
	"encoding/base64"
	"net/url"
	"sort"
	"strings"

	"github.com/fivetwenty-io/csapi/internal/constants"
)

// Signer signs parameter sets with a shared secret.
type Signer struct {
	secret []byte
}

// New creates a signer keyed by the raw bytes of secret.
func New(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Filter returns a copy of params without empty values and without any
// signature field.
func Filter(params map[string]string) map[string]string {
	filtered := make(map[string]string, len(params))

	for key, value := range params {
		if value == "" || key == constants.ParamSignature {
			continue
		}

		filtered[key] = value
	}

	return filtered
}

// Canonicalize builds the string that is signed: lower-cased keys and
// values, form-encoded, sorted by the encoded pair and joined with '&'.
// Empty values and the signature field are left out.
func Canonicalize(params map[string]string) string {
	type pair struct{ key, value string }

	filtered := Filter(params)
	pairs := make([]pair, 0, len(filtered))

	for key, value := range filtered {
		pairs = append(pairs, pair{
			key:   url.QueryEscape(strings.ToLower(key)),
			value: url.QueryEscape(strings.ToLower(value)),
		})
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].key != pairs[j].key {
			return pairs[i].key < pairs[j].key
		}

		return pairs[i].value < pairs[j].value
	})

	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = p.key + "=" + p.value
	}

	return strings.Join(parts, "&")
}

// Signature returns base64(HMAC-SHA1(secret, lower(canonical))).
func (s *Signer) Signature(canonical string) string {
	mac := hmac.New(sha1.New, s.secret)
	mac.Write([]byte(strings.ToLower(canonical)))

	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Sign returns the filtered parameters, original case preserved, with the
// signature attached. params is not modified.
func (s *Signer) Sign(params map[string]string) map[string]string {
	signed := Filter(params)
	signed[constants.ParamSignature] = s.Signature(Canonicalize(signed))

	return signed
}

// Form converts signed parameters to a form body.
func Form(params map[string]string) url.Values {
	form := make(url.Values, len(params))
	for key, value := range params {
		form.Set(key, value)
	}

	return form
}
