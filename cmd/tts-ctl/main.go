package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	serverURL string
	apiKey    string
	output    string
)

var rootCmd = &cobra.Command{
	Use:   "tts-ctl",
	Short: "Qwen TTS server management tool",
	Long: `tts-ctl is a management tool for qwen-tts-server instances.

Commands:
  health      Check server health
  voices      Manage the stored voice library
  synth       Synthesize speech to a file`,
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check server health",
	RunE:  runHealth,
}

var voicesCmd = &cobra.Command{
	Use:   "voices",
	Short: "Manage the stored voice library",
}

var voicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored voices",
	RunE:  runVoicesList,
}

var voicesAddCmd = &cobra.Command{
	Use:   "add [name] [audio-file]",
	Short: "Add a voice from a reference audio file",
	Args:  cobra.ExactArgs(2),
	RunE:  runVoicesAdd,
}

var voicesDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a stored voice",
	Args:  cobra.ExactArgs(1),
	RunE:  runVoicesDelete,
}

var synthCmd = &cobra.Command{
	Use:   "synth [text]",
	Short: "Synthesize speech to a file",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSynth,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "http://localhost:8000", "qwen-tts-server URL")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "API key for authentication")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "text", "Output format: text, json")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(voicesCmd)
	rootCmd.AddCommand(synthCmd)

	voicesCmd.AddCommand(voicesListCmd)
	voicesCmd.AddCommand(voicesAddCmd)
	voicesCmd.AddCommand(voicesDeleteCmd)

	voicesAddCmd.Flags().String("ref-text", "", "Transcript of the reference audio")
	voicesAddCmd.Flags().String("description", "", "Voice description")
	voicesAddCmd.Flags().String("language", "", "Language hint")

	synthCmd.Flags().String("speaker", "", "Preset speaker name")
	synthCmd.Flags().String("language", "", "Language code")
	synthCmd.Flags().String("voice", "", "Stored voice ID to clone")
	synthCmd.Flags().StringP("file", "f", "output.wav", "Output WAV file")
}

func runHealth(cmd *cobra.Command, args []string) error {
	resp, err := makeRequest(http.MethodGet, serverURL+"/health", nil)
	if err != nil {
		return err
	}

	if output == "json" {
		fmt.Println(string(resp))
		return nil
	}

	var health map[string]interface{}
	_ = json.Unmarshal(resp, &health)

	fmt.Printf("Status: %s\n", health["status"])
	fmt.Printf("Device: %s\n", health["device"])
	if loaded, ok := health["custom_voice_model_loaded"].(bool); ok {
		fmt.Printf("CustomVoice model loaded: %t\n", loaded)
	}
	if loaded, ok := health["base_model_loaded"].(bool); ok {
		fmt.Printf("Base model loaded: %t\n", loaded)
	}
	return nil
}

func runVoicesList(cmd *cobra.Command, args []string) error {
	resp, err := makeRequest(http.MethodGet, serverURL+"/voices", nil)
	if err != nil {
		return err
	}

	if output == "json" {
		fmt.Println(string(resp))
		return nil
	}

	var list struct {
		Voices []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"voices"`
	}
	_ = json.Unmarshal(resp, &list)

	if len(list.Voices) == 0 {
		fmt.Println("No voices found")
		return nil
	}

	fmt.Println("Stored Voices:")
	for _, v := range list.Voices {
		fmt.Printf("  %s  %s\n", v.ID, v.Name)
	}
	return nil
}

func runVoicesAdd(cmd *cobra.Command, args []string) error {
	name := args[0]
	audioFile := args[1]

	audioData, err := os.ReadFile(audioFile)
	if err != nil {
		return fmt.Errorf("failed to read audio file: %w", err)
	}

	refText, _ := cmd.Flags().GetString("ref-text")
	description, _ := cmd.Flags().GetString("description")
	language, _ := cmd.Flags().GetString("language")

	reqBody := map[string]interface{}{
		"name":          name,
		"ref_audio":     base64.StdEncoding.EncodeToString(audioData),
		"ref_text":      refText,
		"description":   description,
		"language_hint": language,
	}
	body, _ := json.Marshal(reqBody)

	resp, err := makeRequest(http.MethodPost, serverURL+"/voices", body)
	if err != nil {
		return err
	}

	if output == "json" {
		fmt.Println(string(resp))
		return nil
	}

	var entry struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(resp, &entry)
	fmt.Printf("Voice %q added with id %s\n", name, entry.ID)
	return nil
}

func runVoicesDelete(cmd *cobra.Command, args []string) error {
	id := args[0]

	resp, err := makeRequest(http.MethodDelete, serverURL+"/voices/"+id, nil)
	if err != nil {
		return err
	}

	if output == "json" {
		fmt.Println(string(resp))
		return nil
	}

	fmt.Printf("Voice %s deleted\n", id)
	return nil
}

func runSynth(cmd *cobra.Command, args []string) error {
	text := args[0]
	speaker, _ := cmd.Flags().GetString("speaker")
	language, _ := cmd.Flags().GetString("language")
	voiceID, _ := cmd.Flags().GetString("voice")
	outFile, _ := cmd.Flags().GetString("file")

	var url string
	reqBody := map[string]interface{}{"text": text}
	if voiceID != "" {
		url = serverURL + "/voices/" + voiceID + "/synthesize"
		if language != "" {
			reqBody["language"] = language
		}
	} else {
		url = serverURL + "/synthesize"
		if speaker != "" {
			reqBody["speaker"] = speaker
		}
		if language != "" {
			reqBody["language"] = language
		}
	}
	body, _ := json.Marshal(reqBody)

	resp, err := makeRequest(http.MethodPost, url, body)
	if err != nil {
		return err
	}

	var result struct {
		AudioData string  `json:"audio_data"`
		Duration  float64 `json:"duration"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	audio, err := base64.StdEncoding.DecodeString(result.AudioData)
	if err != nil {
		return fmt.Errorf("failed to decode audio: %w", err)
	}
	if err := os.WriteFile(outFile, audio, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outFile, err)
	}

	fmt.Printf("Wrote %s (%.2fs)\n", outFile, result.Duration)
	return nil
}

func makeRequest(method, url string, body []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		var e struct {
			Detail string `json:"detail"`
		}
		_ = json.Unmarshal(data, &e)
		if e.Detail != "" {
			return nil, fmt.Errorf("server error (%d): %s", resp.StatusCode, e.Detail)
		}
		return nil, fmt.Errorf("server error (%d)", resp.StatusCode)
	}

	return data, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
