package main

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vyrodovalexey/medcatalog/internal/auth"
	"github.com/vyrodovalexey/medcatalog/internal/config"
)

// initLogger builds the JSON production logger at the given level. Unknown
// levels fall back to info.
func initLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	zapConfig := zap.Config{
		Level:       zap.NewAtomicLevelAt(zapLevel),
		Development: false,
		Sampling: &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		},
		Encoding: "json",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "timestamp",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "message",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.SecondsDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return zapConfig.Build(zap.Fields(zap.String("service", serviceName)))
}

// createAuthenticator returns the authenticator for cfg.AuthMode, or nil
// when mutations are open.
func createAuthenticator(cfg *config.Config, logger *zap.Logger) (auth.Authenticator, error) {
	switch auth.AuthMethod(cfg.AuthMode) {
	case auth.AuthMethodNone, "":
		logger.Info("authentication disabled")
		return nil, nil
	case auth.AuthMethodBasic:
		logger.Info("authentication mode: basic auth")
		return auth.NewBasicAuthenticator(cfg.BasicAuthUsers)
	case auth.AuthMethodAPIKey:
		logger.Info("authentication mode: API key")
		return auth.NewAPIKeyAuthenticator(cfg.APIKeys)
	case auth.AuthMethodJWT:
		logger.Info("authentication mode: JWT", zap.String("issuer", cfg.JWTIssuer))
		return auth.NewJWTAuthenticator(cfg.JWTSecret, cfg.JWTIssuer)
	case auth.AuthMethodMulti:
		logger.Info("authentication mode: multi")
		return createMultiAuthenticator(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown auth mode: %s", cfg.AuthMode)
	}
}

// createMultiAuthenticator chains every configured method.
func createMultiAuthenticator(cfg *config.Config, logger *zap.Logger) (auth.Authenticator, error) {
	var authenticators []auth.Authenticator

	if cfg.BasicAuthUsers != "" {
		ba, err := auth.NewBasicAuthenticator(cfg.BasicAuthUsers)
		if err != nil {
			return nil, fmt.Errorf("creating basic authenticator: %w", err)
		}
		authenticators = append(authenticators, ba)
		logger.Info("multi-auth: basic auth enabled")
	}

	if cfg.APIKeys != "" {
		ak, err := auth.NewAPIKeyAuthenticator(cfg.APIKeys)
		if err != nil {
			return nil, fmt.Errorf("creating API key authenticator: %w", err)
		}
		authenticators = append(authenticators, ak)
		logger.Info("multi-auth: API key auth enabled")
	}

	if cfg.JWTSecret != "" {
		ja, err := auth.NewJWTAuthenticator(cfg.JWTSecret, cfg.JWTIssuer)
		if err != nil {
			return nil, fmt.Errorf("creating JWT authenticator: %w", err)
		}
		authenticators = append(authenticators, ja)
		logger.Info("multi-auth: JWT enabled")
	}

	if len(authenticators) == 0 {
		return nil, fmt.Errorf("multi auth mode requires at least one authenticator")
	}

	return auth.NewMultiAuthenticator(authenticators...), nil
}
