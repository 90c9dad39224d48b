// Package firebaseapp builds the Firebase Admin app shared by the document
// store, token verification and push messaging.
package firebaseapp

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

type Credentials struct {
	ProjectID string
	// EncodedJSON is a base64 service account key. It wins over File.
	EncodedJSON string
	File        string
}

// ClientOption resolves the credentials into a client option. With neither
// source available it returns nil and Application Default Credentials apply.
func (c Credentials) ClientOption(logger *zap.Logger) (option.ClientOption, error) {
	if c.EncodedJSON != "" {
		decoded, err := base64.StdEncoding.DecodeString(c.EncodedJSON)
		if err != nil {
			return nil, fmt.Errorf("decode base64 firebase credentials: %w", err)
		}
		logger.Info("firebase: using credentials from environment")
		return option.WithCredentialsJSON(decoded), nil
	}

	if c.File != "" {
		if _, err := os.Stat(c.File); err == nil {
			logger.Info("firebase: using credentials file", zap.String("path", c.File))
			return option.WithCredentialsFile(c.File), nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat firebase credentials file: %w", err)
		}
	}

	logger.Info("firebase: no explicit credentials, using application default credentials")
	return nil, nil
}

func New(ctx context.Context, creds Credentials, logger *zap.Logger) (*firebase.App, error) {
	opt, err := creds.ClientOption(logger)
	if err != nil {
		return nil, err
	}

	var cfg *firebase.Config
	if creds.ProjectID != "" {
		cfg = &firebase.Config{ProjectID: creds.ProjectID}
	}

	var opts []option.ClientOption
	if opt != nil {
		opts = append(opts, opt)
	}

	app, err := firebase.NewApp(ctx, cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}
	return app, nil
}
