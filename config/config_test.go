package config

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"

	"github.com/rpupo63/teammatch-backend/errs"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		entry, key, value string
	}{
		{"PORT=8080", "PORT", "8080"},
		{"DATABASE_URL=postgres://u:p@h/db?sslmode=disable", "DATABASE_URL", "postgres://u:p@h/db?sslmode=disable"},
		{"EMPTY=", "EMPTY", ""},
		{"NOVALUE", "NOVALUE", ""},
	}
	for _, tt := range tests {
		key, value := split(tt.entry)
		if key != tt.key || value != tt.value {
			t.Fatalf("split(%q): expected (%q, %q), got (%q, %q)", tt.entry, tt.key, tt.value, key, value)
		}
	}
}

func TestGetters(t *testing.T) {
	c := map[string]string{
		"PORT":            "9090",
		"BAD_INT":         "nine",
		"JANITOR_ENABLED": "false",
		"BAD_BOOL":        "maybe",
		"TIMEOUT":         "90s",
		"BAD_TIMEOUT":     "soon",
		"ORIGINS":         " https://a.dev , ,https://b.dev",
		"BLANK":           "  ",
	}

	if got := GetString(c, "PORT", "8080"); got != "9090" {
		t.Fatalf("expected 9090, got %s", got)
	}
	if got := GetString(nil, "PORT", "8080"); got != "8080" {
		t.Fatalf("expected default from nil config, got %s", got)
	}
	if got := GetInt(c, "PORT", 1); got != 9090 {
		t.Fatalf("expected 9090, got %d", got)
	}
	if got := GetInt(c, "BAD_INT", 7); got != 7 {
		t.Fatalf("expected default for bad int, got %d", got)
	}
	if got := GetBool(c, "JANITOR_ENABLED", true); got {
		t.Fatal("expected false")
	}
	if got := GetBool(c, "BAD_BOOL", true); !got {
		t.Fatal("expected default for bad bool")
	}
	if got := GetDuration(c, "TIMEOUT", time.Second); got != 90*time.Second {
		t.Fatalf("expected 90s, got %s", got)
	}
	if got := GetDuration(c, "BAD_TIMEOUT", time.Second); got != time.Second {
		t.Fatalf("expected default for bad duration, got %s", got)
	}
	if got := GetStringSlice(c, "ORIGINS", nil); !slices.Equal(got, []string{"https://a.dev", "https://b.dev"}) {
		t.Fatalf("expected two origins, got %v", got)
	}
	if got := GetStringSlice(c, "BLANK", []string{"*"}); !slices.Equal(got, []string{"*"}) {
		t.Fatalf("expected default for blank value, got %v", got)
	}
}

func TestRequire(t *testing.T) {
	c := map[string]string{"DATABASE_URL": "postgres://localhost/db", "JWT_SECRET": ""}

	if got, err := Require(c, "DATABASE_URL"); err != nil || got != "postgres://localhost/db" {
		t.Fatalf("expected value, got %q, %v", got, err)
	}
	for _, key := range []string{"JWT_SECRET", "MISSING"} {
		_, err := Require(c, key)
		if !errs.IsEnvironmentVariableError(err) {
			t.Fatalf("expected environment variable error for %s, got %v", key, err)
		}
	}
}

type mapResolver map[string]string

func (m mapResolver) Resolve(_ context.Context, name string) (string, error) {
	val, ok := m[name]
	if !ok {
		return "", errs.NewConfigError(name, errors.New("parameter not found"))
	}
	return val, nil
}

func TestResolveSecrets(t *testing.T) {
	c := map[string]string{
		"JWT_SECRET":               "local",
		"JWT_SECRET_SSM_PARAM":     "/teammatch/prod/jwt",
		"RESEND_API_KEY_SSM_PARAM": "/teammatch/prod/resend",
		"DATABASE_URL_SSM_PARAM":   "",
		"PORT":                     "8080",
	}
	if !NeedsSecrets(c) {
		t.Fatal("expected secrets to be needed")
	}

	resolver := mapResolver{
		"/teammatch/prod/jwt":    "from-ssm",
		"/teammatch/prod/resend": "re_live",
	}
	if err := ResolveSecrets(context.Background(), c, resolver); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if c["JWT_SECRET"] != "from-ssm" {
		t.Fatalf("expected SSM value to override, got %q", c["JWT_SECRET"])
	}
	if c["RESEND_API_KEY"] != "re_live" {
		t.Fatalf("expected resend key, got %q", c["RESEND_API_KEY"])
	}
	if _, ok := c["DATABASE_URL"]; ok {
		t.Fatal("expected empty parameter name to be skipped")
	}

	if NeedsSecrets(map[string]string{"PORT": "8080"}) {
		t.Fatal("expected no secrets needed")
	}
}

func TestResolveSecretsFailure(t *testing.T) {
	c := map[string]string{"JWT_SECRET_SSM_PARAM": "/missing"}
	if err := ResolveSecrets(context.Background(), c, mapResolver{}); !errs.IsConfigError(err) {
		t.Fatalf("expected config error, got %v", err)
	}
}

type fakeParameters struct {
	input *ssm.GetParameterInput
	value *string
	err   error
}

func (f *fakeParameters) GetParameter(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &ssm.GetParameterOutput{Parameter: &types.Parameter{Name: in.Name, Value: f.value}}, nil
}

func TestSSMResolver(t *testing.T) {
	fake := &fakeParameters{value: aws.String("s3cr3t")}
	resolver := &SSMResolver{client: fake}

	got, err := resolver.Resolve(context.Background(), "/teammatch/prod/jwt")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != "s3cr3t" {
		t.Fatalf("expected s3cr3t, got %q", got)
	}
	if aws.ToString(fake.input.Name) != "/teammatch/prod/jwt" || !aws.ToBool(fake.input.WithDecryption) {
		t.Fatalf("expected decrypted lookup of the parameter, got %+v", fake.input)
	}

	fake.value = nil
	if _, err := resolver.Resolve(context.Background(), "/empty"); !errs.IsConfigError(err) {
		t.Fatalf("expected config error for empty parameter, got %v", err)
	}

	fake.err = errors.New("AccessDeniedException")
	if _, err := resolver.Resolve(context.Background(), "/denied"); !errs.IsConfigError(err) {
		t.Fatalf("expected config error for denied lookup, got %v", err)
	}
}
