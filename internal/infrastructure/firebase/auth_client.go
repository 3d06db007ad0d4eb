package firebase

import (
	"context"

	"firebase.google.com/go/v4/auth"
)

// Identity is the subset of a Firebase user record needed to provision a local account.
type Identity struct {
	UID         string
	Email       string
	DisplayName string
	PhoneNumber string
	PhotoURL    string
}

type FirebaseAuthClient struct {
	client *auth.Client
}

func NewFirebaseAuthClient(client *auth.Client) *FirebaseAuthClient {
	return &FirebaseAuthClient{
		client: client,
	}
}

func (f *FirebaseAuthClient) VerifyToken(ctx context.Context, token string) (string, error) {
	result, err := f.client.VerifyIDToken(ctx, token)
	if err != nil {
		return "", err
	}

	return result.UID, nil
}

func (f *FirebaseAuthClient) LookupUser(ctx context.Context, uid string) (*Identity, error) {
	record, err := f.client.GetUser(ctx, uid)
	if err != nil {
		return nil, err
	}

	return &Identity{
		UID:         record.UID,
		Email:       record.Email,
		DisplayName: record.DisplayName,
		PhoneNumber: record.PhoneNumber,
		PhotoURL:    record.PhotoURL,
	}, nil
}
