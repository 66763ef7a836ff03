package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"staff-absence-backend/internal/classifier"
	"staff-absence-backend/internal/database/models"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// SalonSettings describes the business the workflow runs for
type SalonSettings struct {
	Name                string `yaml:"name" validate:"required"`
	Phone               string `yaml:"phone"`
	BusinessHours       string `yaml:"businessHours"`
	ManagementURL       string `yaml:"managementURL" validate:"omitempty,url"`
	SubstituteAllowance int64  `yaml:"substituteAllowance" validate:"min=0"`
	Currency            string `yaml:"currency" validate:"required,len=3"`
}

// Appointment is a customer booking with a staff member, used for reschedule notices
type Appointment struct {
	CustomerName   string `yaml:"customerName" validate:"required"`
	CustomerLineID string `yaml:"customerLineID" validate:"required"`
	StaffID        string `yaml:"staffID" validate:"required"`
	Date           string `yaml:"date" validate:"required,datetime=2006-01-02"`
	Time           string `yaml:"time" validate:"required"`
}

// WorkflowConfig is the content of workflow.yaml
type WorkflowConfig struct {
	Salon           SalonSettings         `yaml:"salon" validate:"required"`
	Classifier      classifier.Rules      `yaml:"classifier" validate:"required"`
	Staff           []models.StaffProfile `yaml:"staff" validate:"required,min=1,unique=ID,dive"`
	AdminRecipients []string              `yaml:"adminRecipients" validate:"dive,required"`
	Appointments    []Appointment         `yaml:"appointments" validate:"dive"`
	Templates       map[string]string     `yaml:"templates,omitempty"`
}

var workflowValidator = validator.New()

// DefaultWorkflowConfig returns the built-in sample salon
func DefaultWorkflowConfig() *WorkflowConfig {
	return &WorkflowConfig{
		Salon: SalonSettings{
			Name:                "HAL",
			Phone:               "03-1234-5678",
			BusinessHours:       "10:00-19:00",
			ManagementURL:       "http://localhost:3000/dashboard",
			SubstituteAllowance: 5000,
			Currency:            "JPY",
		},
		Classifier: classifier.DefaultRules(),
		Staff: []models.StaffProfile{
			{ID: "U1234567890", Name: "田中 美咲", Role: "美容師", Phone: "090-1234-5678"},
			{ID: "U2345678901", Name: "佐藤 健太", Role: "理容師", Phone: "090-2345-6789"},
			{ID: "U3456789012", Name: "山田 花子", Role: "アシスタント", Phone: "090-3456-7890"},
		},
	}
}

// LoadWorkflow loads and validates workflow.yaml. A missing file yields the defaults.
func LoadWorkflow(path string) (*WorkflowConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultWorkflowConfig(), nil
		}
		return nil, fmt.Errorf("failed to read workflow config: %w", err)
	}
	return ParseWorkflow(data)
}

// ParseWorkflow parses workflow.yaml content on top of the defaults and validates it
func ParseWorkflow(data []byte) (*WorkflowConfig, error) {
	cfg := DefaultWorkflowConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse workflow config: %w", err)
	}

	if err := ValidateWorkflow(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ValidateWorkflow validates the struct tags and cross-references between sections
func ValidateWorkflow(cfg *WorkflowConfig) error {
	if err := workflowValidator.Struct(cfg); err != nil {
		return fmt.Errorf("workflow config validation failed: %w", err)
	}

	known := make(map[string]bool, len(cfg.Staff))
	for _, staff := range cfg.Staff {
		known[staff.ID] = true
	}
	for i, appointment := range cfg.Appointments {
		if !known[appointment.StaffID] {
			return fmt.Errorf("appointments[%d]: unknown staffID %q", i, appointment.StaffID)
		}
	}

	return nil
}

// AppointmentsFor returns the appointments booked with staffID on date
func (c *WorkflowConfig) AppointmentsFor(staffID, date string) []Appointment {
	var out []Appointment
	for _, appointment := range c.Appointments {
		if appointment.StaffID == staffID && appointment.Date == date {
			out = append(out, appointment)
		}
	}
	return out
}
