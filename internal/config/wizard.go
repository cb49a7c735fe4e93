package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// detectImagesDir looks for the directory the backend renders into.
func detectImagesDir() string {
	for _, dir := range []string{"static/images", "images"} {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	return ""
}

func validateURL(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("enter an http(s) URL")
	}
	return nil
}

func validatePort(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 || n > 65535 {
		return errors.New("enter a port between 0 and 65535")
	}
	return nil
}

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .ecoform.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to ecoform! Let's configure the simulation form.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Backend URL.
	backendPrompt := promptui.Prompt{
		Label:    "Simulation backend URL",
		Default:  cfg.BackendURL,
		Validate: validateURL,
	}
	backend, err := backendPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("backend url: %w", err)
	}
	cfg.BackendURL = strings.TrimSpace(backend)

	// 2. Session name.
	sessionPrompt := promptui.Prompt{
		Label:   "Session name",
		Default: cfg.Session,
	}
	session, err := sessionPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	if s := strings.TrimSpace(session); s != "" {
		cfg.Session = s
	}

	// 3. Server port.
	portPrompt := promptui.Prompt{
		Label:    "HTTP server port",
		Default:  strconv.Itoa(cfg.Server.Port),
		Validate: validatePort,
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("server port: %w", err)
	}
	cfg.Server.Port, _ = strconv.Atoi(strings.TrimSpace(portStr))

	// 4. Images directory.
	imagesPrompt := promptui.Prompt{
		Label:   "Local images directory (blank if images live on the backend)",
		Default: detectImagesDir(),
	}
	imagesDir, err := imagesPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("images dir: %w", err)
	}
	cfg.Images.Dir = strings.TrimSpace(imagesDir)

	// 5. Timeout.
	timeoutPrompt := promptui.Select{
		Label: "Backend request timeout",
		Items: []string{
			"none (wait as long as the simulation takes)",
			"60s",
			"300s",
		},
	}
	idx, _, err := timeoutPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("timeout selection: %w", err)
	}
	cfg.Compute.TimeoutSeconds = []int{0, 60, 300}[idx]

	if err := cfg.Save(FileName); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", FileName)
	return cfg, nil
}
