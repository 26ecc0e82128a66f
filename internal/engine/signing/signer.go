package signing

import (
	"crypto/hmac"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Method selects the signature algorithm. The value is what goes out in
// the sign_method parameter.
type Method string

const (
	MethodMD5  Method = "md5"
	MethodHMAC Method = "hmac"
)

func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "md5":
		return MethodMD5, nil
	case "hmac", "hmac-md5", "hmac_md5":
		return MethodHMAC, nil
	}
	return "", fmt.Errorf("unknown sign method %q", s)
}

// Sign computes the request signature over every key except sign.
//
// Keys are sorted by byte order and each entry is written as key followed
// by value with no separator. md5 wraps the result in the secret on both
// sides; hmac keys HMAC-MD5 with the secret. The digest is upper-case hex.
func Sign(params Params, secret string, method Method) string {
	raw := RawString(params)

	var sum []byte
	switch method {
	case MethodHMAC:
		h := hmac.New(md5.New, []byte(secret))
		h.Write([]byte(raw))
		sum = h.Sum(nil)
	default:
		h := md5.Sum([]byte(secret + raw + secret))
		sum = h[:]
	}
	return strings.ToUpper(hex.EncodeToString(sum))
}

// RawString is the string the signature is computed over.
func RawString(params Params) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == SignKey {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(params[k])
	}
	return b.String()
}
