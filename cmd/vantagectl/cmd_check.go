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

	"github.com/spf13/cobra"
)

var (
	checkFramework string

	checkCmd = &cobra.Command{
		Use:   "check",
		Short: "Run and inspect compliance checks",
	}

	checkRunCmd = &cobra.Command{
		Use:   "run [document-id]",
		Short: "Run a synchronous compliance check for one document",
		Args:  cobra.ExactArgs(1),
		Run:   runCheckRun,
	}

	checkBatchCmd = &cobra.Command{
		Use:   "batch [document-id...]",
		Short: "Submit a batch of documents for asynchronous checking",
		Args:  cobra.MinimumNArgs(1),
		Run:   runCheckBatch,
	}

	checkStatusCmd = &cobra.Command{
		Use:   "status [batch-id]",
		Short: "Show the progress of a batch",
		Args:  cobra.ExactArgs(1),
		Run:   runCheckStatus,
	}

	checkListCmd = &cobra.Command{
		Use:   "list [document-id]",
		Short: "List the check history of a document",
		Args:  cobra.ExactArgs(1),
		Run:   runCheckList,
	}
)

func init() {
	checkRunCmd.Flags().StringVarP(&checkFramework, "framework", "f", "gdpr",
		"Framework to check against (gdpr, hipaa, pci_dss, sox, soc2, ...)")
	checkBatchCmd.Flags().StringVarP(&checkFramework, "framework", "f", "gdpr",
		"Framework to check against")

	checkCmd.AddCommand(checkRunCmd)
	checkCmd.AddCommand(checkBatchCmd)
	checkCmd.AddCommand(checkStatusCmd)
	checkCmd.AddCommand(checkListCmd)
}

func runCheckRun(cmd *cobra.Command, args []string) {
	ws := workspace()
	fmt.Printf("Running a %s check for document %s...\n", checkFramework, args[0])
	body := call(http.MethodPost, "/v1/workspaces/"+ws+"/checks", map[string]any{
		"document_id": args[0],
		"framework":   checkFramework,
	})
	printJSON(body)
}

func runCheckBatch(cmd *cobra.Command, args []string) {
	ws := workspace()
	fmt.Printf("Submitting %d documents for a %s batch check...\n", len(args), checkFramework)
	body := call(http.MethodPost, "/v1/workspaces/"+ws+"/checks/batch", map[string]any{
		"document_ids": args,
		"framework":    checkFramework,
	})
	printJSON(body)
}

func runCheckStatus(cmd *cobra.Command, args []string) {
	ws := workspace()
	body := call(http.MethodGet, "/v1/workspaces/"+ws+"/batches/"+args[0], nil)
	printJSON(body)
}

func runCheckList(cmd *cobra.Command, args []string) {
	ws := workspace()
	body := call(http.MethodGet, "/v1/workspaces/"+ws+"/documents/"+args[0]+"/checks", nil)
	printJSON(body)
}
