// Copyright (C) 2026 Vantage Compliance (dev@vantagecompliance.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// vantagectl is the ops CLI for the compliance service. It talks to the HTTP
// API; it never touches the database directly.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	rootCmd = &cobra.Command{
		Use:   "vantagectl",
		Short: "Operate the Vantage compliance service",
		Long:  "vantagectl runs compliance checks, inspects batches, and manages workspace scores through the service API.",
	}

	serverURL   string
	workspaceID string
	authToken   string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "",
		"Base URL of the compliance service (defaults to $VANTAGE_SERVER_URL or http://localhost:12310)")
	rootCmd.PersistentFlags().StringVarP(&workspaceID, "workspace", "w", "",
		"Workspace id (defaults to $VANTAGE_WORKSPACE)")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", "",
		"Bearer token (defaults to $VANTAGE_TOKEN)")

	viper.SetEnvPrefix("vantage")
	viper.AutomaticEnv()

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(issuesCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(healthCmd)
}

func baseURL() string {
	if serverURL != "" {
		return serverURL
	}
	if url := viper.GetString("server_url"); url != "" {
		return url
	}
	return "http://localhost:12310"
}

func workspace() string {
	if workspaceID != "" {
		return workspaceID
	}
	if ws := viper.GetString("workspace"); ws != "" {
		return ws
	}
	fmt.Fprintln(os.Stderr, "Error: a workspace is required (--workspace or VANTAGE_WORKSPACE)")
	os.Exit(1)
	return ""
}

// call performs one API request and returns the raw response body. Non-2xx
// responses are printed and exit the process.
func call(method, path string, payload any) []byte {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: could not encode the request: %v\n", err)
			os.Exit(1)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, baseURL()+path, body)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	token := authToken
	if token == "" {
		token = viper.GetString("token")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 5 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not reach the compliance service at %s: %v\n", baseURL(), err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not read the response: %v\n", err)
		os.Exit(1)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		fmt.Fprintf(os.Stderr, "Error: the service returned %s\n%s\n", resp.Status, string(respBody))
		os.Exit(1)
	}
	return respBody
}

// printJSON pretty-prints an API response body.
func printJSON(raw []byte) {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		fmt.Println(string(raw))
		return
	}
	fmt.Println(pretty.String())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
