package alerts

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hibiken/asynq"
)

// ensureClient returns a usable client instance
func ensureClient() *asynq.Client {
	if client == nil {
		Init()
	}
	return client
}

// EnqueueWelcomeEmail schedules a welcome email to the user
func EnqueueWelcomeEmail(userID, email, name string) error {
	base := os.Getenv("APP_URL")
	if base == "" {
		base = "http://localhost:3000"
	}
	base = strings.TrimRight(base, "/")

	subject := fmt.Sprintf("Welcome to RentHub, %s!", name)
	body := fmt.Sprintf("Hi %s, thanks for joining RentHub.\n\nOpen RentHub: %s\n\nIf the link doesn’t work, copy and paste the URL above.", name, base)

	env := EmailEnvelope{
		To:      email,
		Subject: subject,
		Body:    body,
	}
	payload := WelcomeEmailPayload{UserID: userID, Name: name, Email: email, Envelope: env, SentAt: time.Now()}
	b, _ := json.Marshal(payload)
	task := asynq.NewTask(TaskWelcomeEmail, b)
	_, err := ensureClient().Enqueue(task, asynq.Queue("emails"))
	return err
}

// EnqueueVisitProposed notifies the opposite side that a new visit slot awaits their answer
func EnqueueVisitProposed(requestID, title, proposedBy, date, timeOfDay, email string) error {
	env := EmailEnvelope{
		To:      email,
		Subject: fmt.Sprintf("Visit proposed for %q", title),
		Body:    fmt.Sprintf("A visit for maintenance request %s has been proposed by the %s side:\n\nDate: %s\nTime: %s\n\nAccept it or counter with a different slot in RentHub.", requestID, proposedBy, date, timeOfDay),
	}
	payload := VisitProposedPayload{RequestID: requestID, RequestTitle: title, ProposedBy: proposedBy, ScheduledDate: date, ScheduledTime: timeOfDay, Email: email, Envelope: env, SentAt: time.Now()}
	b, _ := json.Marshal(payload)
	task := asynq.NewTask(TaskVisitProposed, b)
	_, err := ensureClient().Enqueue(task, asynq.Queue("emails"))
	return err
}

// EnqueueVisitAccepted notifies the proposing side that the visit is locked in
func EnqueueVisitAccepted(requestID, title, acceptedBy, date, timeOfDay, email string) error {
	env := EmailEnvelope{
		To:      email,
		Subject: fmt.Sprintf("Visit confirmed for %q", title),
		Body:    fmt.Sprintf("Your proposed visit for maintenance request %s was accepted by the %s side.\n\nDate: %s\nTime: %s\n\nThe request is now scheduled.", requestID, acceptedBy, date, timeOfDay),
	}
	payload := VisitAcceptedPayload{RequestID: requestID, RequestTitle: title, AcceptedBy: acceptedBy, ScheduledDate: date, ScheduledTime: timeOfDay, Email: email, Envelope: env, SentAt: time.Now()}
	b, _ := json.Marshal(payload)
	task := asynq.NewTask(TaskVisitAccepted, b)
	_, err := ensureClient().Enqueue(task, asynq.Queue("emails"))
	return err
}

// EnqueueMessageNew notifies the recipient of a new thread message
func EnqueueMessageNew(requestID, senderID, recipientID, email, content string) error {
	env := EmailEnvelope{
		To:      email,
		Subject: "New message on your maintenance request",
		Body:    fmt.Sprintf("You have a new message on maintenance request %s:\n\n%s\n\nReply in RentHub.", requestID, content),
	}
	payload := MessageNewPayload{RequestID: requestID, SenderID: senderID, RecipientID: recipientID, Content: content, Email: email, Envelope: env, SentAt: time.Now()}
	b, _ := json.Marshal(payload)
	task := asynq.NewTask(TaskMessageNew, b)
	_, err := ensureClient().Enqueue(task, asynq.Queue("emails"))
	return err
}

// EnqueueRequestClosed notifies an interested party that the request was cancelled or rejected
func EnqueueRequestClosed(requestID, title, status, email string) error {
	env := EmailEnvelope{
		To:      email,
		Subject: fmt.Sprintf("Maintenance request %q closed", title),
		Body:    fmt.Sprintf("Maintenance request %s is now %s. No further visits will be scheduled for it.", requestID, status),
	}
	payload := RequestClosedPayload{RequestID: requestID, RequestTitle: title, Status: status, Email: email, Envelope: env, SentAt: time.Now()}
	b, _ := json.Marshal(payload)
	task := asynq.NewTask(TaskRequestClosed, b)
	_, err := ensureClient().Enqueue(task, asynq.Queue("emails"))
	return err
}
