package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"RocketShoes/internal/cart"
	"RocketShoes/internal/notify"
)

func writeCart(w io.Writer, format string, items []cart.Product, toasts []notify.Notification) error {
	if format == "json" {
		if toasts == nil {
			toasts = []notify.Notification{}
		}
		return writeJSON(w, struct {
			Cart          []cart.Product        `json:"cart"`
			Notifications []notify.Notification `json:"notifications"`
		}{items, toasts})
	}

	for _, n := range toasts {
		fmt.Fprintf(w, "! %s\n", n.Message)
	}
	if len(items) == 0 {
		fmt.Fprintln(w, "cart is empty")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tPRICE\tAMOUNT\tSUBTOTAL")
	var total float64
	for _, p := range items {
		sub := p.Price * float64(p.Amount)
		total += sub
		fmt.Fprintf(tw, "%d\t%s\t%.2f\t%d\t%.2f\n", p.ID, p.Title, p.Price, p.Amount, sub)
	}
	fmt.Fprintf(tw, "\t\t\tTOTAL\t%.2f\n", total)
	return tw.Flush()
}

func writeProducts(w io.Writer, format string, products []cart.Product) error {
	if format == "json" {
		return writeJSON(w, products)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tPRICE")
	for _, p := range products {
		fmt.Fprintf(tw, "%d\t%s\t%.2f\n", p.ID, p.Title, p.Price)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
