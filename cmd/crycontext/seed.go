package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/SakshiKukreja04/BabyCare-sub002/internal/baby"
	"github.com/SakshiKukreja04/BabyCare-sub002/internal/event"
)

// seedFile is the import format: babies with their caregiving events.
// Event fields are free-form; "kind" must be feeding, sleep, reminder or alert.
type seedFile struct {
	Babies []seedBaby `json:"babies" yaml:"babies"`
}

type seedBaby struct {
	baby.Profile `yaml:",inline"`
	Events       []event.Event `json:"events" yaml:"events"`
}

var seedCmd = &cobra.Command{
	Use:   "seed FILE",
	Short: "Import babies and caregiving events from a JSON or YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		sf, err := loadSeed(args[0])
		if err != nil {
			return err
		}
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		for _, b := range sf.Babies {
			p, err := st.UpsertBaby(b.Profile)
			if err != nil {
				return err
			}
			for i, e := range b.Events {
				if !knownKind(e.Kind) {
					return fmt.Errorf("baby %s event %d: unknown kind %q", p.ID, i, e.Kind)
				}
			}
			if _, err := st.AddEvents(p.ID, b.Events); err != nil {
				return err
			}
			logger.Info("seeded baby", "baby_id", p.ID, "name", p.Name, "events", len(b.Events))
			fmt.Printf("%s  %-20s  %d events\n", p.ID, p.Name, len(b.Events))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func loadSeed(path string) (seedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return seedFile{}, fmt.Errorf("read seed %s: %w", path, err)
	}
	var sf seedFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &sf)
	default:
		err = json.Unmarshal(data, &sf)
	}
	if err != nil {
		return seedFile{}, fmt.Errorf("parse seed %s: %w", path, err)
	}
	return sf, nil
}

func knownKind(k event.Kind) bool {
	switch k {
	case event.Feeding, event.Sleep, event.Reminder, event.Alert:
		return true
	}
	return false
}
