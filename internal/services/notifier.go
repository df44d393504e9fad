package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/azayd/website/backend/internal/models"
	"gorm.io/gorm"
)

// ApplicationNotifier sends the confirmation email of an application at
// most once.
type ApplicationNotifier struct {
	db       *gorm.DB
	mailer   Mailer
	renderer *ConfirmationRenderer
	now      func() time.Time
}

func NewApplicationNotifier(db *gorm.DB, mailer Mailer, renderer *ConfirmationRenderer) *ApplicationNotifier {
	return &ApplicationNotifier{db: db, mailer: mailer, renderer: renderer, now: time.Now}
}

// Process claims the application by flipping email_sent, sends, and
// releases the claim again if delivery fails so a retry can send it.
func (n *ApplicationNotifier) Process(ctx context.Context, task *ConfirmationTask) error {
	if !n.mailer.Enabled() {
		LogInfo("email", "confirmation_skipped", fmt.Sprintf("SMTP disabled, confirmation for application %d not sent", task.ApplicationID), nil, "", "", nil)
		return nil
	}

	var app models.JobApplication
	if err := n.db.WithContext(ctx).Preload("Job").First(&app, task.ApplicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("load application: %w", err)
	}

	claimed, err := n.claim(ctx, app.ID)
	if err != nil {
		return err
	}
	if !claimed {
		return nil
	}

	msg, err := n.renderer.Render(&app, n.now())
	if err == nil {
		err = n.mailer.Send(ctx, msg)
	}
	if err != nil {
		if rerr := n.release(context.WithoutCancel(ctx), app.ID); rerr != nil {
			LogError("email", "confirmation_release", rerr.Error(), nil, "", "", map[string]uint{"application_id": app.ID})
		}
		LogError("email", "confirmation_failed", err.Error(), nil, "", "", map[string]uint{"application_id": app.ID})
		return err
	}

	LogInfo("email", "confirmation_sent", fmt.Sprintf("Confirmation email sent for job application %d", app.ID), nil, "", "", nil)
	return nil
}

func (n *ApplicationNotifier) claim(ctx context.Context, id uint) (bool, error) {
	res := n.db.WithContext(ctx).Model(&models.JobApplication{}).
		Where("id = ? AND email_sent = ?", id, false).
		Update("email_sent", true)
	if res.Error != nil {
		return false, fmt.Errorf("claim application %d: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (n *ApplicationNotifier) release(ctx context.Context, id uint) error {
	return n.db.WithContext(ctx).Model(&models.JobApplication{}).
		Where("id = ?", id).
		Update("email_sent", false).Error
}
