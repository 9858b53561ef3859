package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/agonsep/21stCentury/internal/cli/output"
	"github.com/agonsep/21stCentury/pkg/models"
)

func newProductsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "products",
		Aliases: []string{"product"},
		Short:   "Browse and manage catalog products",
	}
	cmd.AddCommand(
		newProductsListCmd(a),
		newProductsGetCmd(a),
		newProductsCreateCmd(a),
		newProductsUpdateCmd(a),
		newProductsDeleteCmd(a),
		newProductsFacetsCmd(a),
	)
	return cmd
}

func newProductsListCmd(a *app) *cobra.Command {
	var (
		category, manufacturer, search, sort, order string
		origins                                     []string
		nevi                                        bool
		limit, offset                               int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products with optional filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := output.FromCmd(cmd)
			if err != nil {
				return err
			}

			q := url.Values{}
			setIf(q, "category", category)
			setIf(q, "manufacturer", manufacturer)
			setIf(q, "search", search)
			setIf(q, "sort", sort)
			setIf(q, "order", order)
			for _, o := range origins {
				q.Add("origin", o)
			}
			if cmd.Flags().Changed("nevi") {
				q.Set("neviEligible", strconv.FormatBool(nevi))
			}
			if limit > 0 {
				q.Set("limit", strconv.Itoa(limit))
			}
			if offset > 0 {
				q.Set("offset", strconv.Itoa(offset))
			}

			products, err := a.client().ListProducts(cmd.Context(), q)
			if err != nil {
				return fmt.Errorf("failed to list products: %w", err)
			}
			return f.Output(products, func(w io.Writer) error {
				return writeProducts(w, products)
			})
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "filter by category")
	cmd.Flags().StringVar(&manufacturer, "manufacturer", "", "filter by manufacturer")
	cmd.Flags().StringSliceVar(&origins, "origin", nil, "filter by country of origin (repeatable)")
	cmd.Flags().StringVar(&search, "search", "", "case-insensitive match on name or manufacturer")
	cmd.Flags().BoolVar(&nevi, "nevi", false, "filter by NEVI eligibility")
	cmd.Flags().StringVar(&sort, "sort", "", "sort key (createdAt, name, manufacturer, cost, rating, efficiency, origin)")
	cmd.Flags().StringVar(&order, "order", "", "sort order (asc|desc)")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of products")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of products to skip")
	return cmd
}

func newProductsGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a single product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := output.FromCmd(cmd)
			if err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p, err := a.client().GetProduct(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to get product %d: %w", id, err)
			}
			return f.Output(p, func(w io.Writer) error {
				return writeProductDetail(w, p)
			})
		},
	}
}

func newProductsCreateCmd(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a product from a JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := output.FromCmd(cmd)
			if err != nil {
				return err
			}
			p, err := readProduct(file)
			if err != nil {
				return err
			}
			created, err := a.client().CreateProduct(cmd.Context(), p)
			if err != nil {
				return fmt.Errorf("failed to create product: %w", err)
			}
			return f.Output(created, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Created product %d (%s)\n", created.ID, created.Name)
				return err
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "product JSON file (- for stdin)")
	cmd.MarkFlagRequired("file")
	return cmd
}

func newProductsUpdateCmd(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a product with the contents of a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := output.FromCmd(cmd)
			if err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p, err := readProduct(file)
			if err != nil {
				return err
			}
			updated, err := a.client().UpdateProduct(cmd.Context(), id, p)
			if err != nil {
				return fmt.Errorf("failed to update product %d: %w", id, err)
			}
			return f.Output(updated, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Updated product %d (%s)\n", updated.ID, updated.Name)
				return err
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "product JSON file (- for stdin)")
	cmd.MarkFlagRequired("file")
	return cmd
}

func newProductsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.client().DeleteProduct(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to delete product %d: %w", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted product %d\n", id)
			return nil
		},
	}
}

type facets struct {
	Categories    []models.Category `json:"categories"`
	Manufacturers []string          `json:"manufacturers"`
	Origins       []string          `json:"origins"`
}

func newProductsFacetsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "facets",
		Short: "List distinct categories, manufacturers and origins",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := output.FromCmd(cmd)
			if err != nil {
				return err
			}

			c := a.client()
			var out facets
			if out.Categories, err = c.Categories(cmd.Context()); err != nil {
				return fmt.Errorf("failed to list categories: %w", err)
			}
			if out.Manufacturers, err = c.Manufacturers(cmd.Context()); err != nil {
				return fmt.Errorf("failed to list manufacturers: %w", err)
			}
			if out.Origins, err = c.Origins(cmd.Context()); err != nil {
				return fmt.Errorf("failed to list origins: %w", err)
			}

			return f.Output(out, func(w io.Writer) error {
				fmt.Fprintln(w, "Categories:")
				for _, cat := range out.Categories {
					fmt.Fprintf(w, "  %s (%s)\n", cat.Name, cat.ID)
				}
				fmt.Fprintln(w, "Manufacturers:")
				for _, m := range out.Manufacturers {
					fmt.Fprintf(w, "  %s\n", m)
				}
				fmt.Fprintln(w, "Origins:")
				for _, o := range out.Origins {
					fmt.Fprintf(w, "  %s\n", o)
				}
				return nil
			})
		},
	}
}

func readProduct(path string) (*models.Product, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var p models.Product
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse product JSON: %w", err)
	}
	return &p, nil
}

func writeProducts(w io.Writer, products []*models.Product) error {
	rows := make([][]string, 0, len(products))
	for _, p := range products {
		rows = append(rows, []string{
			strconv.FormatInt(p.ID, 10),
			p.Name,
			p.Category,
			p.Manufacturer,
			output.OrDash(p.Origin),
			p.Rating,
			output.Money(p.Cost, p.Currency),
			yesNo(p.NEVIEligible),
		})
	}
	return output.Table(w, []string{"id", "name", "category", "manufacturer", "origin", "rating", "cost", "nevi"}, rows)
}

func writeProductDetail(w io.Writer, p *models.Product) error {
	fmt.Fprintf(w, "ID:            %d\n", p.ID)
	fmt.Fprintf(w, "Name:          %s\n", p.Name)
	fmt.Fprintf(w, "Category:      %s\n", p.Category)
	fmt.Fprintf(w, "Manufacturer:  %s\n", p.Manufacturer)
	fmt.Fprintf(w, "Origin:        %s\n", output.OrDash(p.Origin))
	fmt.Fprintf(w, "Rating:        %s\n", p.Rating)
	fmt.Fprintf(w, "Cost:          %s\n", output.Money(p.Cost, p.Currency))
	if p.MaintenanceCost != nil {
		fmt.Fprintf(w, "Maintenance:   %s\n", output.Money(*p.MaintenanceCost, p.Currency))
	}
	if p.Efficiency != nil {
		fmt.Fprintf(w, "Efficiency:    %g%%\n", *p.Efficiency)
	}
	if p.Lifetime != nil {
		fmt.Fprintf(w, "Lifetime:      %d years\n", *p.Lifetime)
	}
	fmt.Fprintf(w, "Footprint:     %s\n", output.OrDash(p.Footprint))
	fmt.Fprintf(w, "NEVI eligible: %s\n", yesNo(p.NEVIEligible))
	for _, d := range p.Documents {
		fmt.Fprintf(w, "Document:      %s\n", d)
	}
	if p.Description != nil && *p.Description != "" {
		fmt.Fprintf(w, "\n%s\n", *p.Description)
	}
	_, err := fmt.Fprintf(w, "Updated:       %s\n", output.Ago(p.UpdatedAt))
	return err
}

func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
