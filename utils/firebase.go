package utils

import (
	"context"
	"fmt"
	"log"
	"os"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// Firebase bundles the clients the server takes from one Firebase app.
// Messaging is nil when FCM could not be initialized.
type Firebase struct {
	App       *firebase.App
	Firestore *firestore.Client
	Messaging *messaging.Client
}

// InitFirebase initializes the Firebase Admin SDK for projectID.
// credentialsPath may be empty to use application default credentials.
func InitFirebase(ctx context.Context, projectID, credentialsPath string) (*Firebase, error) {
	log.Println("🔄 Initializing Firebase...")

	if projectID == "" {
		return nil, fmt.Errorf("FIREBASE_PROJECT_ID is required")
	}

	var opts []option.ClientOption
	if credentialsPath != "" {
		if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("firebase credentials file not found: %s", credentialsPath)
		}
		log.Printf("📂 Using Firebase credentials at: %s", credentialsPath)
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase app initialization failed: %w", err)
	}
	log.Printf("✅ Firebase app initialized successfully for project: %s", projectID)

	store, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("firestore client initialization failed: %w", err)
	}

	fb := &Firebase{App: app, Firestore: store}

	fcmClient, err := app.Messaging(ctx)
	if err != nil {
		log.Printf("❌ Error getting FCM client: %v", err)
		log.Println("ℹ️  Continuing without FCM (push notifications will be disabled)")
		return fb, nil
	}
	fb.Messaging = fcmClient
	log.Println("✅ FCM client initialized successfully")

	return fb, nil
}

// FCMEnabled reports whether push notifications can be sent.
func (f *Firebase) FCMEnabled() bool {
	return f != nil && f.Messaging != nil
}

// Close releases the Firestore client.
func (f *Firebase) Close() {
	if f == nil || f.Firestore == nil {
		return
	}
	if err := f.Firestore.Close(); err != nil {
		log.Printf("⚠️ Error closing Firestore client: %v", err)
	}
}
