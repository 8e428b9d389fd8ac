package utils

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"firebase.google.com/go/v4/messaging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"gopkg.in/gomail.v2"

	"github.com/nestay/nestay_backend/config"
	"github.com/nestay/nestay_backend/models"
)

// SaveNotification saves a notification to the database
func SaveNotification(db *mongo.Client, userID primitive.ObjectID, title, message, notifType string, data interface{}) error {
	collection := config.GetCollection(db, "notifications")

	notification := models.Notification{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      notifType,
		Data:      data,
		IsRead:    false,
		CreatedAt: time.Now(),
	}

	_, err := collection.InsertOne(context.Background(), notification)
	return err
}

// SendPushNotification delivers an FCM push to the user's registered device.
// Missing Firebase config or a missing device token is not an error worth
// failing the caller over; it is logged and skipped.
func SendPushNotification(db *mongo.Client, userID primitive.ObjectID, title, body string, data map[string]string) error {
	if config.FirebaseApp == nil {
		log.Printf("Firebase not configured; skipping push for user %s", userID.Hex())
		return nil
	}

	var user models.User
	err := config.GetCollection(db, "users").FindOne(context.Background(), bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		return fmt.Errorf("failed to find user for push: %w", err)
	}
	if user.FCMToken == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := config.FirebaseApp.Messaging(ctx)
	if err != nil {
		return fmt.Errorf("failed to create messaging client: %w", err)
	}

	msg := &messaging.Message{
		Token: user.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	if _, err := client.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send push: %w", err)
	}
	return nil
}

// SendCashoutReceiptEmail mails the host a receipt for a recorded cashout.
func SendCashoutReceiptEmail(toEmail, hostName string, amount float64, currency, batchID string) error {
	smtpHost := os.Getenv("SMTP_HOST")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")
	fromEmail := os.Getenv("SMTP_FROM")
	if fromEmail == "" {
		fromEmail = smtpUser
	}
	smtpPort := 587
	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		fmt.Sscanf(portStr, "%d", &smtpPort)
	}

	if smtpHost == "" || smtpUser == "" {
		log.Printf("SMTP not configured; skipping cashout receipt to %s", toEmail)
		return nil
	}

	subject := "Your Nestay cashout is on its way"
	body := fmt.Sprintf(`
		<html>
		<body>
			<p>Hi %s,</p>
			<p>Your cashout of <strong>%.2f %s</strong> has been submitted to your payout account.</p>
			<p>Reference: %s</p>
			<p>Transfers usually arrive within a few business days.</p>
			<p>— The Nestay Team</p>
		</body>
		</html>
	`, hostName, amount, currency, batchID)

	m := gomail.NewMessage()
	m.SetHeader("From", fromEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPass)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}
	return nil
}
