package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/clouide/clouide/internal/models"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:          "status",
	Short:        "📊 Check whether a Clouide server is up",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		health, err := fetchHealth(&http.Client{Timeout: 5 * time.Second}, serverURL)
		fmt.Println(renderStatus(serverURL, health, err))
		return err
	},
}

var (
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

func fetchHealth(client *http.Client, server string) (*models.HealthResponse, error) {
	resp, err := client.Get(strings.TrimSuffix(server, "/") + "/health")
	if err != nil {
		return nil, fmt.Errorf("server unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("health check returned %s", resp.Status)
	}

	var health models.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return nil, fmt.Errorf("invalid health response: %w", err)
	}
	return &health, nil
}

func renderStatus(server string, health *models.HealthResponse, err error) string {
	var b strings.Builder
	b.WriteString(labelStyle.Render("server  ") + server + "\n")
	if err != nil {
		b.WriteString(labelStyle.Render("status  ") + errorStyle.Render("● down") + "\n")
		b.WriteString(labelStyle.Render("error   ") + err.Error())
		return b.String()
	}
	b.WriteString(labelStyle.Render("status  ") + okStyle.Render("● "+health.Status) + "\n")
	b.WriteString(labelStyle.Render("service ") + health.Service)
	return b.String()
}
