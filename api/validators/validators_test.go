package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/fastfood-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupBody struct {
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,phone_vn"`
	Password string `json:"password" validate:"required,password_policy"`
}

func TestDecodeJSONBodyCustomRules(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.co","phone":"0912345678","password":"abc123"}`))
	var body signupBody
	require.NoError(t, DecodeJSONBody(req, &body))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.co","phone":"1912345678","password":"abcdef"}`))
	err := DecodeJSONBody(req, &body)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	fields := pkgerrors.Fields(err)
	require.Len(t, fields, 2)
	assert.Equal(t, "password", fields[0].Field)
	assert.Equal(t, "phone", fields[1].Field)
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.co","extra":1}`))
	var body signupBody
	err := DecodeJSONBody(req, &body)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}

func TestParseQueryHelpers(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?category_id=2&min_price=5.50&max_price=abc&limit=500", nil)

	id, err := ParseQueryID(req, "category_id")
	require.NoError(t, err)
	assert.Equal(t, int64(2), *id)

	missing, err := ParseQueryID(req, "other")
	require.NoError(t, err)
	assert.Nil(t, missing)

	min, err := ParseQueryDecimal(req, "min_price")
	require.NoError(t, err)
	assert.Equal(t, "5.5", min.String())

	_, err = ParseQueryDecimal(req, "max_price")
	assert.Error(t, err)

	_, err = ParseQueryInt(req, "limit", 20, 1, 100)
	assert.Error(t, err)

	_, err = ParsePathID("-1", "item id")
	assert.Error(t, err)
}

func TestSanitizeString(t *testing.T) {
	cases := map[string]struct {
		in   string
		max  int
		want string
	}{
		"trims and collapses": {in: "  bánh   mì\tthịt ", want: "bánh mì thịt"},
		"drops control chars": {in: "piz\x00za\x1b", want: "pizza"},
		"caps by rune":        {in: "phở bò tái", max: 3, want: "phở"},
		"no trailing space":   {in: "gà rán", max: 3, want: "gà"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if got := SanitizeString(tc.in, tc.max); got != tc.want {
				t.Fatalf("SanitizeString(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
			}
		})
	}
}
