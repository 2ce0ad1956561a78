package notifications

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/taskhive-dev/taskhive/internal/models"
)

type DiscordWebhookField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type DiscordEmbed struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Color       int                   `json:"color"`
	Fields      []DiscordWebhookField `json:"fields"`
	Footer      *DiscordFooter        `json:"footer,omitempty"`
	Timestamp   string                `json:"timestamp"`
}

type DiscordFooter struct {
	Text string `json:"text"`
}

type DiscordWebhookRequest struct {
	Username string         `json:"username"`
	Embeds   []DiscordEmbed `json:"embeds"`
}

type SlackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

type SlackAttachment struct {
	Color     string       `json:"color"`
	Title     string       `json:"title"`
	Fields    []SlackField `json:"fields"`
	Footer    string       `json:"footer"`
	Timestamp int64        `json:"ts"`
}

type SlackWebhookRequest struct {
	Username    string            `json:"username"`
	Text        string            `json:"text"`
	Attachments []SlackAttachment `json:"attachments"`
}

const (
	ColorBlue  = 3447003 // #3498DB - status moved
	ColorGreen = 65280   // #00FF00 - task done

	WebhookUsername = "TaskHive"
)

// SendTaskStatusWebhooks posts a status-change summary to the project's
// configured channels. Best effort: the caller logs the returned error and
// moves on, the task update has already committed.
func SendTaskStatusWebhooks(project models.Project, task models.Task, actorName, oldStatus string) error {
	if project.DiscordWebhook != "" {
		if err := sendDiscordStatusChange(project.DiscordWebhook, project, task, actorName, oldStatus); err != nil {
			return fmt.Errorf("discord: %w", err)
		}
	}

	if project.SlackWebhook != "" {
		if err := sendSlackStatusChange(project.SlackWebhook, project, task, actorName, oldStatus); err != nil {
			return fmt.Errorf("slack: %w", err)
		}
	}

	return nil
}

func statusColor(status string) (int, string) {
	if status == models.TaskStatusDone {
		return ColorGreen, "good"
	}
	return ColorBlue, "#3498DB"
}

func sendDiscordStatusChange(webhookURL string, project models.Project, task models.Task, actorName, oldStatus string) error {
	color, _ := statusColor(task.Status)

	payload := DiscordWebhookRequest{
		Username: WebhookUsername,
		Embeds: []DiscordEmbed{
			{
				Title:       "Task status changed",
				Description: fmt.Sprintf("**%s** moved '%s' from %s to %s.", actorName, task.Title, oldStatus, task.Status),
				Color:       color,
				Fields: []DiscordWebhookField{
					{Name: "Task", Value: task.Title, Inline: true},
					{Name: "Status", Value: task.Status, Inline: true},
					{Name: "Changed By", Value: actorName, Inline: true},
				},
				Footer: &DiscordFooter{
					Text: fmt.Sprintf("Project: %s | TaskHive", project.Title),
				},
				Timestamp: time.Now().Format(time.RFC3339),
			},
		},
	}

	return sendWebhook(webhookURL, payload)
}

func sendSlackStatusChange(webhookURL string, project models.Project, task models.Task, actorName, oldStatus string) error {
	_, color := statusColor(task.Status)

	payload := SlackWebhookRequest{
		Username: WebhookUsername,
		Text:     fmt.Sprintf("%s moved '%s' from %s to %s", actorName, task.Title, oldStatus, task.Status),
		Attachments: []SlackAttachment{
			{
				Color: color,
				Title: task.Title,
				Fields: []SlackField{
					{Title: "Status", Value: task.Status, Short: true},
					{Title: "Changed By", Value: actorName, Short: true},
				},
				Footer:    fmt.Sprintf("Project: %s", project.Title),
				Timestamp: time.Now().Unix(),
			},
		},
	}

	return sendWebhook(webhookURL, payload)
}

func sendWebhook(webhookURL string, payload interface{}) error {
	body, err := json.Marshal(payload)

	if err != nil {
		return err
	}

	client := &http.Client{Timeout: 10 * time.Second}

	resp, err := client.Post(webhookURL, "application/json", bytes.NewReader(body))

	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}
