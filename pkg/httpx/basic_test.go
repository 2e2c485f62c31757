package httpx

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func basicHeader(payload string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(payload))
}

func TestParseBasicCredentials(t *testing.T) {
	t.Run("valid credentials", func(t *testing.T) {
		email, password, err := ParseBasicCredentials(basicHeader("a@x.com:secret1"))
		require.NoError(t, err)
		require.Equal(t, "a@x.com", email)
		require.Equal(t, "secret1", password)
	})

	t.Run("password may contain colons", func(t *testing.T) {
		email, password, err := ParseBasicCredentials(basicHeader("a@x.com:pa:ss:wd"))
		require.NoError(t, err)
		require.Equal(t, "a@x.com", email)
		require.Equal(t, "pa:ss:wd", password)
	})

	t.Run("empty password is allowed", func(t *testing.T) {
		email, password, err := ParseBasicCredentials(basicHeader("a@x.com:"))
		require.NoError(t, err)
		require.Equal(t, "a@x.com", email)
		require.Empty(t, password)
	})

	t.Run("malformed headers", func(t *testing.T) {
		for name, header := range map[string]string{
			"empty":          "",
			"wrong scheme":   "Bearer abc",
			"bad base64":     "Basic !!!not-base64!!!",
			"missing colon":  basicHeader("a@x.com"),
			"missing email":  basicHeader(":secret1"),
			"case sensitive": "basic " + base64.StdEncoding.EncodeToString([]byte("a@x.com:s")),
		} {
			t.Run(name, func(t *testing.T) {
				_, _, err := ParseBasicCredentials(header)
				require.ErrorIs(t, err, ErrMalformedAuthorization)
			})
		}
	})
}
