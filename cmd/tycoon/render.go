package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/napolitain/tycoon/internal/converter"
	"github.com/napolitain/tycoon/internal/models"
	"github.com/napolitain/tycoon/internal/solver"
	"github.com/napolitain/tycoon/internal/store"
)

var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen, color.Bold)
	infoColor    = color.New(color.FgYellow)
)

func printBanner(w io.Writer) {
	titleColor.Fprintln(w, "\n╭───────────────────────────╮")
	titleColor.Fprintln(w, "│  Game Studio Tycoon       │")
	titleColor.Fprintln(w, "╰───────────────────────────╯")
	fmt.Fprintln(w)
}

func printProfile(w io.Writer, p models.SaveProfile, settings *models.Settings) {
	infoColor.Fprintln(w, "📊 Resources:")
	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"Resource", "Current", "Max", "Per tick"}),
	)
	for _, rt := range models.AllResourceTypes() {
		limit := fmt.Sprintf("%.0f", p.Resources.Max.Get(rt))
		if settings.IsUnlimited(rt) {
			limit = "∞"
		}
		_ = table.Append([]string{
			rt.DisplayName(),
			fmt.Sprintf("%.1f", p.Resources.Current.Get(rt)),
			limit,
			fmt.Sprintf("%.2f", p.Resources.PerTick.Get(rt)),
		})
	}
	_ = table.Render()
	fmt.Fprintln(w)

	if len(p.Assets) > 0 {
		infoColor.Fprintln(w, "🏢 Assets:")
		table = tablewriter.NewTable(w,
			tablewriter.WithHeader([]string{"Category", "Asset", "Count"}),
		)
		for _, a := range p.Assets {
			_ = table.Append([]string{a.Type.ShortName(), assetName(settings, a.Type, a.ID), fmt.Sprintf("%d", a.Count)})
		}
		_ = table.Render()
		fmt.Fprintln(w)
	}

	if len(p.InProgressAssets) > 0 {
		infoColor.Fprintln(w, "🛠  In development:")
		table = tablewriter.NewTable(w,
			tablewriter.WithHeader([]string{"#", "Asset", "Progress", "Started"}),
		)
		for i, ip := range p.InProgressAssets {
			progress := fmt.Sprintf("%d", ip.DevelopmentProgressTicks)
			if def, ok := settings.Asset(ip.Type, ip.ID); ok {
				progress = fmt.Sprintf("%d/%d", ip.DevelopmentProgressTicks, def.TimeCostTicks)
			}
			_ = table.Append([]string{
				fmt.Sprintf("%d", i+1),
				assetName(settings, ip.Type, ip.ID),
				progress,
				converter.FormatTime(ip.StartTime),
			})
		}
		_ = table.Render()
		fmt.Fprintln(w)
	}

	printCapacity(w, p, settings)
}

func printCapacity(w io.Writer, p models.SaveProfile, settings *models.Settings) {
	infoColor.Fprintf(w, "📦 Containers: %s\n", formatContainers(p.OwnedContainers))
	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"Category", "Used", "Limit"}),
	)
	for _, c := range converter.CapacityToWire(p, settings) {
		limit := "unlimited"
		if c.Limited {
			limit = fmt.Sprintf("%.0f", c.Limit)
		}
		_ = table.Append([]string{models.AssetCategory(c.Category).ShortName(), fmt.Sprintf("%d", c.Used), limit})
	}
	_ = table.Render()
}

func printSlots(w io.Writer, slots []store.Slot) {
	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"#", "Save", "Created", "Saved", "Money"}),
	)
	for i, s := range slots {
		_ = table.Append([]string{
			fmt.Sprintf("%d", i+1),
			s.ID,
			converter.FormatTime(s.CreatedAt),
			converter.FormatTime(s.UpdatedAt),
			fmt.Sprintf("%.1f", s.Profile.Resources.Current.Money),
		})
	}
	_ = table.Render()
}

func printCatalog(w io.Writer, settings *models.Settings) {
	infoColor.Fprintf(w, "⏱  Tick interval: %s, %d save slots\n\n", settings.TickInterval, settings.MaxSaveSlots)

	for _, category := range models.AllAssetCategories() {
		infoColor.Fprintf(w, "📋 %s assets:\n", category.ShortName())
		table := tablewriter.NewTable(w,
			tablewriter.WithHeader([]string{"ID", "Name", "Cost", "Ticks", "Income", "Upkeep", "Max"}),
		)
		for _, def := range settings.AssetsIn(category) {
			_ = table.Append([]string{
				def.ID,
				def.Name,
				formatResources(def.Cost),
				fmt.Sprintf("%d", def.TimeCostTicks),
				formatResources(def.IncomePerTick),
				formatResources(def.MaintenanceCostPerTick),
				formatResources(def.ResourceMax),
			})
		}
		_ = table.Render()
		fmt.Fprintln(w)
	}

	infoColor.Fprintln(w, "📦 Containers:")
	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"ID", "Name", "Cost", "Capacity"}),
	)
	for _, ct := range converter.SettingsToCatalog(settings).ContainerTypes {
		var capacity []string
		for _, category := range models.AllAssetCategories() {
			if slots, ok := ct.Capacities[string(category)]; ok {
				capacity = append(capacity, fmt.Sprintf("%s %.0f", category.ShortName(), slots))
			}
		}
		_ = table.Append([]string{ct.ID, ct.Name, formatResources(converter.WireToResources(ct.Cost)), strings.Join(capacity, ", ")})
	}
	_ = table.Render()
}

func printPlan(w io.Writer, plan solver.Plan, settings *models.Settings) {
	infoColor.Fprintf(w, "🧭 Plan over %d ticks: %d actions, %d developments finished\n\n",
		plan.Ticks, len(plan.Steps), plan.Completed)

	if len(plan.Steps) > 0 {
		table := tablewriter.NewTable(w,
			tablewriter.WithHeader([]string{"Tick", "Action", "Target", "Cost", "Payback"}),
		)
		for _, step := range plan.Steps {
			action := "hire"
			if step.Kind == solver.KindContainer {
				action = "buy " + step.Category.ShortName() + " room"
			} else if step.Category == models.Content {
				action = "develop"
			}
			_ = table.Append([]string{
				fmt.Sprintf("%d", step.Tick),
				action,
				step.Name,
				formatResources(step.Cost),
				fmt.Sprintf("%.1f", step.Metric.PaybackTicks()),
			})
		}
		_ = table.Render()
		fmt.Fprintln(w)
	}

	successColor.Fprintln(w, "✓ Projected end state:")
	printProfile(w, plan.Final, settings)
}

func assetName(settings *models.Settings, category models.AssetCategory, id string) string {
	if def, ok := settings.Asset(category, id); ok {
		return def.Name
	}
	return id
}

func formatResources(r models.Resources) string {
	var parts []string
	r.Each(func(rt models.ResourceType, amount float64) {
		if amount != 0 {
			parts = append(parts, fmt.Sprintf("%s %g", rt.DisplayName(), amount))
		}
	})
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}

func formatContainers(owned []models.OwnedContainer) string {
	if len(owned) == 0 {
		return "none"
	}
	ids := make([]string, 0, len(owned))
	for _, c := range owned {
		ids = append(ids, c.ID)
	}
	return strings.Join(ids, ", ")
}
