// cmd/tools/registry-updater/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"inventory-workers/pkg/registry"
)

const defaultPath = "configs/activity-registry.json"

func main() {
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)

	exportPath := exportCmd.String("path", defaultPath, "Path to registry file")

	updatePath := updateCmd.String("path", defaultPath, "Path to registry file")
	idUpdate := updateCmd.String("id", "", "Activity ID to update (e.g., inventory.rate.fetch)")
	field := updateCmd.String("field", "", "Field to update (status, version, etc.)")
	value := updateCmd.String("value", "", "New value for the field")

	validatePath := validateCmd.String("path", defaultPath, "Path to registry file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
		if err := exportRegistry(*exportPath); err != nil {
			fmt.Printf("Error exporting registry: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Exported registry to %s\n", *exportPath)

	case "update":
		updateCmd.Parse(os.Args[2:])
		if *idUpdate == "" || *field == "" || *value == "" {
			fmt.Println("Error: id, field, and value are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		if err := updateActivity(*updatePath, *idUpdate, *field, *value); err != nil {
			fmt.Printf("Error updating activity: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated activity %s, field %s to %s\n", *idUpdate, *field, *value)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		reg, err := registry.LoadRegistry(*validatePath)
		if err == nil {
			err = reg.Validate()
		}
		if err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Registry validation passed. Found %d activities.\n", len(reg.Activities))

	case "help":
		fallthrough
	default:
		help()
	}
}

// exportRegistry regenerates the catalog, keeping statuses and tuning
// already recorded in an existing file.
func exportRegistry(path string) error {
	fresh := registry.Build()
	if existing, err := registry.LoadRegistry(path); err == nil {
		for i := range fresh.Activities {
			if old := existing.Find(fresh.Activities[i].ID); old != nil {
				fresh.Activities[i].ImplementationStatus = old.ImplementationStatus
				fresh.Activities[i].Retries = old.Retries
				fresh.Activities[i].Timeout = old.Timeout
			}
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := fresh.Validate(); err != nil {
		return err
	}
	return registry.Save(fresh, path)
}

func updateActivity(path, id, field, value string) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	found := reg.Find(id)
	if found == nil {
		return fmt.Errorf("activity with ID %s not found", id)
	}
	a := *found
	switch field {
	case "status":
		a.ImplementationStatus = value
	case "version":
		a.Version = value
	case "displayName":
		a.DisplayName = value
	case "description":
		a.Description = value
	case "timeout":
		a.Timeout = value
	case "retries":
		retries, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid retries value: %w", err)
		}
		a.Retries = retries
	default:
		return fmt.Errorf("unknown field: %s", field)
	}

	reg.Upsert(a)
	if err := reg.Validate(); err != nil {
		return err
	}
	return registry.Save(reg, path)
}

func help() {
	fmt.Print(`
Usage: registry-updater <command> [flags]

Commands:
  export   Write the worker catalog to the registry file
  update   Update an existing activity's field
  validate Validate the registry file
  help     Show this help message

Examples:
  registry-updater export -path configs/activity-registry.json
  registry-updater update -id inventory.rate.fetch -field status -value verified
  registry-updater validate -path configs/activity-registry.json

Use 'registry-updater <command> -h' for more information about a command.
` + "\n")
}
