// Copyright (C) 2026 Vantage Compliance (dev@vantagecompliance.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	issueStatus   string
	issueSeverity string
	issueLimit    int

	issuesCmd = &cobra.Command{
		Use:   "issues",
		Short: "List workspace compliance issues",
		Run:   runIssuesList,
	}

	scoreCmd = &cobra.Command{
		Use:   "score",
		Short: "Read or recompute the workspace compliance score",
	}

	scoreGetCmd = &cobra.Command{
		Use:   "get",
		Short: "Show the current workspace score snapshot",
		Run:   runScoreGet,
	}

	scoreRecalcCmd = &cobra.Command{
		Use:   "recalc",
		Short: "Force a fresh workspace score calculation",
		Run:   runScoreRecalc,
	}

	dashboardCmd = &cobra.Command{
		Use:   "dashboard",
		Short: "Show the workspace compliance dashboard",
		Run:   runDashboard,
	}

	healthCmd = &cobra.Command{
		Use:   "health",
		Short: "Check that the compliance service is up",
		Run:   runHealth,
	}
)

func init() {
	issuesCmd.Flags().StringVar(&issueStatus, "status", "", "Filter by status (open, in_progress, resolved, dismissed)")
	issuesCmd.Flags().StringVar(&issueSeverity, "severity", "", "Filter by severity (critical, high, medium, low, info)")
	issuesCmd.Flags().IntVar(&issueLimit, "limit", 0, "Maximum issues to return")

	scoreCmd.AddCommand(scoreGetCmd)
	scoreCmd.AddCommand(scoreRecalcCmd)
}

func runIssuesList(cmd *cobra.Command, args []string) {
	ws := workspace()
	path := "/v1/workspaces/" + ws + "/issues?status=" + issueStatus +
		"&severity=" + issueSeverity
	if issueLimit > 0 {
		path += "&limit=" + strconv.Itoa(issueLimit)
	}
	printJSON(call(http.MethodGet, path, nil))
}

func runScoreGet(cmd *cobra.Command, args []string) {
	ws := workspace()
	printJSON(call(http.MethodGet, "/v1/workspaces/"+ws+"/score", nil))
}

func runScoreRecalc(cmd *cobra.Command, args []string) {
	ws := workspace()
	fmt.Println("Recalculating the workspace score...")
	printJSON(call(http.MethodPost, "/v1/workspaces/"+ws+"/score", nil))
}

func runDashboard(cmd *cobra.Command, args []string) {
	ws := workspace()
	printJSON(call(http.MethodGet, "/v1/workspaces/"+ws+"/dashboard", nil))
}

func runHealth(cmd *cobra.Command, args []string) {
	printJSON(call(http.MethodGet, "/health", nil))
}
