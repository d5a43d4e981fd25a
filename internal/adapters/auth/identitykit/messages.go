package identitykit

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/alaraguvercin/kolay-hatirla/internal/platform/httpclient"
)

// Stable provider error codes. The provider sometimes suffixes a detail after
// a colon ("WEAK_PASSWORD : Password should be at least 6 characters"), so
// codes are matched on the prefix before the colon.
const (
	CodeInvalidEmail        = "INVALID_EMAIL"
	CodeUserDisabled        = "USER_DISABLED"
	CodeUserNotFound        = "EMAIL_NOT_FOUND"
	CodeWrongPassword       = "INVALID_PASSWORD"
	CodeInvalidCredential   = "INVALID_LOGIN_CREDENTIALS"
	CodeTooManyRequests     = "TOO_MANY_ATTEMPTS_TRY_LATER"
	CodeEmailAlreadyInUse   = "EMAIL_EXISTS"
	CodeWeakPassword        = "WEAK_PASSWORD"
	CodeOperationNotAllowed = "OPERATION_NOT_ALLOWED"
	CodeNetworkFailure      = "NETWORK_ERROR"
)

// ProviderError carries the provider's stable error code plus its raw message.
type ProviderError struct {
	Code string
	Raw  string
}

func (e *ProviderError) Error() string {
	if e.Raw == "" {
		return "identity provider: " + e.Code
	}
	return "identity provider: " + e.Code + ": " + e.Raw
}

// User-facing messages, Turkish.
var messages = map[string]string{
	CodeInvalidEmail:        "Geçersiz e-posta adresi.",
	CodeUserDisabled:        "Bu kullanıcı hesabı devre dışı bırakılmış.",
	CodeUserNotFound:        "Bu e-posta adresine kayıtlı kullanıcı bulunamadı.",
	CodeWrongPassword:       "Şifre hatalı.",
	CodeInvalidCredential:   "E-posta veya şifre hatalı.",
	CodeTooManyRequests:     "Çok fazla başarısız giriş denemesi. Lütfen daha sonra tekrar deneyin.",
	CodeEmailAlreadyInUse:   "Bu e-posta adresi zaten kullanılıyor.",
	CodeWeakPassword:        "Şifre çok zayıf. Lütfen daha güçlü bir şifre seçin.",
	CodeOperationNotAllowed: "Bu işlem şu anda devre dışı.",
	CodeNetworkFailure:      "Ağ hatası. Lütfen internet bağlantınızı kontrol edin.",
}

// LocalizedMessage maps an error from the client into the Turkish message the
// UI shows. Unknown provider codes fall back to the raw provider text, and
// anything else to the generic fallback.
func LocalizedMessage(err error, fallback string) string {
	var pe *ProviderError
	if errors.As(err, &pe) {
		if msg, ok := messages[pe.Code]; ok {
			return msg
		}
		if strings.TrimSpace(pe.Raw) != "" {
			return pe.Raw
		}
		return fallback
	}
	return fallback
}

// asProviderError normalizes transport errors into ProviderError where the
// response carries a provider error body.
func asProviderError(err error) error {
	var he *httpclient.HTTPError
	if errors.As(err, &he) {
		var body struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if jsonErr := json.Unmarshal([]byte(he.Body), &body); jsonErr == nil && body.Error.Message != "" {
			code, raw := splitCode(body.Error.Message)
			return &ProviderError{Code: code, Raw: raw}
		}
		return err
	}
	if err != nil {
		// Transport-level failure (DNS, refused, timeout).
		return &ProviderError{Code: CodeNetworkFailure, Raw: err.Error()}
	}
	return nil
}

func splitCode(msg string) (code, raw string) {
	msg = strings.TrimSpace(msg)
	if i := strings.Index(msg, ":"); i >= 0 {
		return strings.TrimSpace(msg[:i]), msg
	}
	return msg, ""
}
