package config

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/teammatch-backend/errs"
)

// SSMParamSuffix marks a key whose value is the name of an SSM parameter holding
// the real value: JWT_SECRET_SSM_PARAM=/teammatch/prod/jwt-secret fills JWT_SECRET.
const SSMParamSuffix = "_SSM_PARAM"

// SecretResolver looks a secret up by name.
type SecretResolver interface {
	Resolve(ctx context.Context, name string) (string, error)
}

type parameterGetter interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// SSMResolver reads SecureString parameters from AWS Systems Manager.
type SSMResolver struct {
	client parameterGetter
}

// NewSSMResolver loads the default AWS credential chain. An empty region leaves
// the choice to the environment.
func NewSSMResolver(ctx context.Context, region string) (*SSMResolver, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errs.NewConfigError("aws", err)
	}
	return &SSMResolver{client: ssm.NewFromConfig(cfg)}, nil
}

func (r *SSMResolver) Resolve(ctx context.Context, name string) (string, error) {
	out, err := r.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", errs.NewConfigError(name, err)
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return "", errs.NewInvalidConfigError(name, "parameter has no value")
	}
	return *out.Parameter.Value, nil
}

// NeedsSecrets reports whether any key in config points at an SSM parameter.
func NeedsSecrets(config map[string]string) bool {
	for key, val := range config {
		if strings.HasSuffix(key, SSMParamSuffix) && val != "" {
			return true
		}
	}
	return false
}

// ResolveSecrets fills every KEY for which KEY_SSM_PARAM is set with the value
// resolved from that parameter. A value already present under KEY is overwritten.
func ResolveSecrets(ctx context.Context, config map[string]string, resolver SecretResolver) error {
	for key, param := range config {
		if !strings.HasSuffix(key, SSMParamSuffix) || param == "" {
			continue
		}
		target := strings.TrimSuffix(key, SSMParamSuffix)
		if target == "" {
			continue
		}

		val, err := resolver.Resolve(ctx, param)
		if err != nil {
			return err
		}
		config[target] = val
		log.Info().Str("key", target).Str("parameter", param).Msg("secret resolved from SSM")
	}
	return nil
}
