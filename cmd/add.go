package cmd

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nestkeeper/nestkeeper/models"
)

// addCmd groups entity-registration subcommands. The engine only reads
// scope entities; these commands exist so a home can be set up from the
// CLI without a separate backend.
var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Register homes, rooms, trackables and catalog entries",
}

var (
	addUserID       string
	addName         string
	addHomeID       string
	addRoomID       string
	addYearBuilt    int
	addHomeType     string
	addHasYard      bool
	addRoomType     string
	addFloor        int
	addHasWindow    bool
	addItemType     string
	addCategory     string
	addBrand        string
	addModel        string
	addSerial       string
	addNotes        string
	addPurchaseDate string
)

var addHomeCmd = &cobra.Command{
	Use:   "home",
	Short: "Register a home",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := GetStore()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		now := time.Now().UTC()
		h := &models.Home{
			ID:        uuid.NewString(),
			UserID:    addUserID,
			Name:      addName,
			YearBuilt: addYearBuilt,
			HomeType:  addHomeType,
			HasYard:   addHasYard,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := models.ValidateStruct(h); err != nil {
			return fmt.Errorf("invalid home: %w", err)
		}
		if err := s.CreateHome(cmd.Context(), h); err != nil {
			return fmt.Errorf("create home: %w", err)
		}
		if isJSON() {
			return printJSON(h)
		}
		fmt.Printf("✓ Home %q registered (id: %s)\n", h.Name, h.ID)
		return nil
	},
}

var addRoomCmd = &cobra.Command{
	Use:   "room",
	Short: "Register a room in a home",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := GetStore()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		now := time.Now().UTC()
		r := &models.Room{
			ID:        uuid.NewString(),
			HomeID:    addHomeID,
			Name:      addName,
			Type:      addRoomType,
			Floor:     addFloor,
			HasWindow: addHasWindow,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := models.ValidateStruct(r); err != nil {
			return fmt.Errorf("invalid room: %w", err)
		}
		if err := s.CreateRoom(cmd.Context(), r); err != nil {
			return fmt.Errorf("create room: %w", err)
		}
		if isJSON() {
			return printJSON(r)
		}
		fmt.Printf("✓ Room %q registered (id: %s)\n", r.Name, r.ID)
		return nil
	},
}

var addTrackableCmd = &cobra.Command{
	Use:   "trackable",
	Short: "Register a trackable item (appliance, system)",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := GetStore()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		now := time.Now().UTC()
		tr := &models.Trackable{
			ID:           uuid.NewString(),
			HomeID:       addHomeID,
			Name:         addName,
			Type:         addItemType,
			Category:     addCategory,
			Brand:        addBrand,
			Model:        addModel,
			SerialNumber: addSerial,
			Notes:        addNotes,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if addRoomID != "" {
			tr.RoomID = &addRoomID
		}
		if addPurchaseDate != "" {
			purchased, err := time.Parse("2006-01-02", addPurchaseDate)
			if err != nil {
				return fmt.Errorf("invalid --purchased date %q (want YYYY-MM-DD)", addPurchaseDate)
			}
			tr.PurchaseDate = &purchased
		}
		if err := models.ValidateStruct(tr); err != nil {
			return fmt.Errorf("invalid trackable: %w", err)
		}
		if err := s.CreateTrackable(cmd.Context(), tr); err != nil {
			return fmt.Errorf("create trackable: %w", err)
		}
		if isJSON() {
			return printJSON(tr)
		}
		fmt.Printf("✓ Trackable %q registered (id: %s)\n", tr.Name, tr.ID)
		return nil
	},
}

var addCatalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Register a catalog entry (a brand/model/type templates attach to)",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := GetStore()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		now := time.Now().UTC()
		entry := &models.CatalogEntry{
			ID:        uuid.NewString(),
			Brand:     addBrand,
			Model:     addModel,
			Type:      addItemType,
			Category:  addCategory,
			Notes:     addNotes,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := models.ValidateStruct(entry); err != nil {
			return fmt.Errorf("invalid catalog entry: %w", err)
		}
		if err := s.CreateCatalogEntry(cmd.Context(), entry); err != nil {
			return fmt.Errorf("create catalog entry: %w", err)
		}
		if isJSON() {
			return printJSON(entry)
		}
		fmt.Printf("✓ Catalog entry %s registered (id: %s)\n", entry.Type, entry.ID)
		return nil
	},
}

func init() {
	addHomeCmd.Flags().StringVarP(&addUserID, "user", "u", "", "owning user id")
	addHomeCmd.Flags().StringVarP(&addName, "name", "n", "", "home name")
	addHomeCmd.Flags().IntVar(&addYearBuilt, "year-built", 0, "construction year")
	addHomeCmd.Flags().StringVar(&addHomeType, "type", "", "home type (house, apartment, condo)")
	addHomeCmd.Flags().BoolVar(&addHasYard, "yard", false, "home has a yard")
	_ = addHomeCmd.MarkFlagRequired("user")
	_ = addHomeCmd.MarkFlagRequired("name")

	addRoomCmd.Flags().StringVar(&addHomeID, "home", "", "home id the room belongs to")
	addRoomCmd.Flags().StringVarP(&addName, "name", "n", "", "room name")
	addRoomCmd.Flags().StringVar(&addRoomType, "type", "", "room type as entered (e.g. \"Primary Bedroom\")")
	addRoomCmd.Flags().IntVar(&addFloor, "floor", 0, "floor number")
	addRoomCmd.Flags().BoolVar(&addHasWindow, "window", false, "room has a window")
	_ = addRoomCmd.MarkFlagRequired("home")
	_ = addRoomCmd.MarkFlagRequired("name")

	addTrackableCmd.Flags().StringVar(&addHomeID, "home", "", "home id the item belongs to")
	addTrackableCmd.Flags().StringVar(&addRoomID, "room", "", "room id the item lives in")
	addTrackableCmd.Flags().StringVarP(&addName, "name", "n", "", "item name")
	addTrackableCmd.Flags().StringVar(&addItemType, "type", "", "item type (hvac, water_heater, dishwasher, ...)")
	addTrackableCmd.Flags().StringVar(&addCategory, "category", "", "item category")
	addTrackableCmd.Flags().StringVar(&addBrand, "brand", "", "brand")
	addTrackableCmd.Flags().StringVar(&addModel, "model", "", "model")
	addTrackableCmd.Flags().StringVar(&addSerial, "serial", "", "serial number")
	addTrackableCmd.Flags().StringVar(&addNotes, "notes", "", "free-form notes")
	addTrackableCmd.Flags().StringVar(&addPurchaseDate, "purchased", "", "purchase date (YYYY-MM-DD)")
	_ = addTrackableCmd.MarkFlagRequired("home")
	_ = addTrackableCmd.MarkFlagRequired("name")

	addCatalogCmd.Flags().StringVar(&addBrand, "brand", "", "brand")
	addCatalogCmd.Flags().StringVar(&addModel, "model", "", "model")
	addCatalogCmd.Flags().StringVar(&addItemType, "type", "", "item type the entry covers")
	addCatalogCmd.Flags().StringVar(&addCategory, "category", "", "category")
	addCatalogCmd.Flags().StringVar(&addNotes, "notes", "", "free-form notes")
	_ = addCatalogCmd.MarkFlagRequired("type")

	addCmd.AddCommand(addHomeCmd)
	addCmd.AddCommand(addRoomCmd)
	addCmd.AddCommand(addTrackableCmd)
	addCmd.AddCommand(addCatalogCmd)
	rootCmd.AddCommand(addCmd)
}
