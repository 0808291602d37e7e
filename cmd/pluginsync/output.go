package main

import (
	"encoding/json"
	"fmt"

	"pluginsync/internal/app/reconcile"
	"pluginsync/internal/domain"
	"pluginsync/internal/infra/mapping"
	"pluginsync/internal/infra/telemetry"
)

func writeJSON(value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

type actionJSON struct {
	ID         string `json:"id"`
	Reason     string `json:"reason"`
	MinVersion string `json:"minVersion"`
	Installed  string `json:"installed,omitempty"`
}

func planActions(plan domain.ActionPlan) []actionJSON {
	return mapping.MapSlice(plan.Actions, func(action domain.Action) actionJSON {
		return actionJSON{
			ID:         action.ID,
			Reason:     string(action.Reason),
			MinVersion: action.MinVersion,
			Installed:  action.Installed,
		}
	})
}

func printRunResult(result reconcile.RunResult, jsonOutput bool) error {
	if jsonOutput {
		failures := mapping.MapSlice(result.RefreshFailures, func(failure reconcile.SourceFailure) map[string]string {
			return map[string]string{
				"source": failure.Source.ID,
				"error":  failure.Err.Error(),
			}
		})
		return writeJSON(map[string]any{
			"runId":           result.RunID,
			"actions":         planActions(result.Plan),
			"refreshFailures": failures,
			"restarted":       result.Restarted,
		})
	}
	if result.Plan.IsEmpty() {
		fmt.Println("nothing to install")
	}
	for _, action := range result.Plan.Actions {
		fmt.Printf("install %s (%s)\n", action.ID, action.Reason)
	}
	for _, failure := range result.RefreshFailures {
		fmt.Printf("update site %s unreachable; used cached metadata\n", failure.Source.ID)
	}
	if result.Restarted {
		fmt.Println("host restarted")
	}
	return nil
}

func printPrepared(prepared reconcile.Prepared, jsonOutput bool) error {
	sources := prepared.Catalog.Sources()
	requirements := prepared.Requirements.Requirements()
	if jsonOutput {
		sites := mapping.MapSlice(sources, func(source domain.Source) map[string]string {
			return map[string]string{"id": source.ID, "url": telemetry.RedactURL(source.URL)}
		})
		required := mapping.MapSlice(requirements, func(req domain.Requirement) map[string]string {
			return map[string]string{"id": req.ID, "minVersion": req.MinVersion.String()}
		})
		return writeJSON(map[string]any{
			"valid":       true,
			"updateSites": sites,
			"required":    required,
			"duplicates":  prepared.Requirements.DuplicateIDs(),
		})
	}
	fmt.Printf("valid update_sites=%d required=%d\n", len(sources), len(requirements))
	for _, id := range prepared.Requirements.DuplicateIDs() {
		fmt.Printf("warning: %s listed more than once; last entry wins\n", id)
	}
	return nil
}

func printInstalled(installed, pending []domain.InstalledComponent, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(map[string]any{
			"installed": installed,
			"pending":   pending,
		})
	}
	for _, component := range installed {
		fmt.Printf("%s\t%s\n", component.ID, component.Version)
	}
	for _, component := range pending {
		fmt.Printf("%s\t%s\tpending restart\n", component.ID, component.Version)
	}
	return nil
}
