package firebase

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// Clients bundles the Firebase-backed clients constructed once at startup
// and passed to the handlers as explicit dependencies.
type Clients struct {
	App       *firebase.App
	Messaging *messaging.Client
	Firestore *firestore.Client
}

// Init resolves credentials, builds the Firebase app, and constructs the
// Messaging and Firestore clients. Constructing the clients doubles as the
// startup probe; the process refuses to start if any step fails.
func Init(ctx context.Context) (*Clients, error) {
	opt, source, err := resolveCredentials()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve Firebase credentials (%s): %w", source, err)
	}

	config := &firebase.Config{
		ProjectID: os.Getenv("FIREBASE_PROJECT_ID"),
	}

	var app *firebase.App
	if opt != nil {
		app, err = firebase.NewApp(ctx, config, opt)
	} else {
		// Fall back to application-default credentials (Google Cloud deployments)
		app, err = firebase.NewApp(ctx, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	msgClient, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get FCM messaging client: %w", err)
	}

	fsClient, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Firestore client: %w", err)
	}

	return &Clients{
		App:       app,
		Messaging: msgClient,
		Firestore: fsClient,
	}, nil
}

// resolveCredentials tries each configured credential source in order and
// returns the client option for the first one present. A nil option with no
// error means no explicit source is configured and application-default
// credentials should be used.
func resolveCredentials() (option.ClientOption, string, error) {
	if path := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH"); path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, "service account file", err
		}
		return option.WithCredentialsFile(path), "service account file", nil
	}

	if raw := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON"); raw != "" {
		if !json.Valid([]byte(raw)) {
			return nil, "inline JSON", fmt.Errorf("FIREBASE_SERVICE_ACCOUNT_JSON is not valid JSON")
		}
		return option.WithCredentialsJSON([]byte(raw)), "inline JSON", nil
	}

	if encoded := os.Getenv("FIREBASE_SERVICE_ACCOUNT_BASE64"); encoded != "" {
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, "base64 blob", err
		}
		if !json.Valid(decoded) {
			return nil, "base64 blob", fmt.Errorf("decoded FIREBASE_SERVICE_ACCOUNT_BASE64 is not valid JSON")
		}
		return option.WithCredentialsJSON(decoded), "base64 blob", nil
	}

	if creds, ok, err := credentialsFromFields(); err != nil {
		return nil, "structured fields", err
	} else if ok {
		return option.WithCredentialsJSON(creds), "structured fields", nil
	}

	return nil, "application default", nil
}

// credentialsFromFields assembles service-account JSON from the individual
// FIREBASE_* variables. All three must be present together.
func credentialsFromFields() ([]byte, bool, error) {
	projectID := os.Getenv("FIREBASE_PROJECT_ID")
	clientEmail := os.Getenv("FIREBASE_CLIENT_EMAIL")
	privateKey := os.Getenv("FIREBASE_PRIVATE_KEY")

	if clientEmail == "" && privateKey == "" {
		return nil, false, nil
	}
	if projectID == "" || clientEmail == "" || privateKey == "" {
		return nil, false, fmt.Errorf("structured credentials require FIREBASE_PROJECT_ID, FIREBASE_CLIENT_EMAIL, and FIREBASE_PRIVATE_KEY")
	}

	// Env vars typically carry the key with escaped newlines
	privateKey = strings.ReplaceAll(privateKey, `\n`, "\n")

	creds, err := json.Marshal(map[string]string{
		"type":         "service_account",
		"project_id":   projectID,
		"client_email": clientEmail,
		"private_key":  privateKey,
		"token_uri":    "https://oauth2.googleapis.com/token",
	})
	if err != nil {
		return nil, false, err
	}
	return creds, true, nil
}
