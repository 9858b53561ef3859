package cmd

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agonsep/21stCentury/internal/cli/output"
	"github.com/agonsep/21stCentury/pkg/editor"
	"github.com/agonsep/21stCentury/pkg/models"
)

func newMapsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "maps",
		Aliases: []string{"map"},
		Short:   "Inspect and manage saved infrastructure maps",
	}
	cmd.AddCommand(
		newMapsListCmd(a),
		newMapsGetCmd(a),
		newMapsCreateCmd(a),
		newMapsDeleteCmd(a),
		newMapsLayersCmd(a),
	)
	return cmd
}

func newMapsListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved maps, most recently updated first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := output.FromCmd(cmd)
			if err != nil {
				return err
			}
			maps, err := a.client().ListMaps(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list maps: %w", err)
			}
			return f.Output(maps, func(w io.Writer) error {
				rows := make([][]string, 0, len(maps))
				for _, m := range maps {
					rows = append(rows, []string{
						strconv.FormatInt(m.ID, 10),
						m.Name,
						string(m.Layer),
						strconv.Itoa(m.IconCount),
						strconv.Itoa(m.ConnectionCount),
						output.Ago(m.UpdatedAt),
					})
				}
				return output.Table(w, []string{"id", "name", "layer", "icons", "connections", "updated"}, rows)
			})
		},
	}
}

func newMapsGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a saved map with its icons and connections",
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
			m, err := a.client().GetMap(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to get map %d: %w", id, err)
			}
			return f.Output(m, func(w io.Writer) error {
				fmt.Fprintf(w, "Map %d: %s\n", m.ID, m.Name)
				fmt.Fprintf(w, "Center: %.6f, %.6f  Layer: %s  Updated: %s\n\n",
					m.Center.Lat, m.Center.Lng, m.Layer, output.Ago(m.UpdatedAt))

				icons := make([][]string, 0, len(m.Icons))
				for _, ic := range m.Icons {
					icons = append(icons, []string{
						ic.ID, ic.Type, ic.Name,
						fmt.Sprintf("%.6f, %.6f", ic.Position.Lat, ic.Position.Lng),
					})
				}
				if err := output.Table(w, []string{"icon", "type", "name", "position"}, icons); err != nil {
					return err
				}
				if len(m.Connections) == 0 {
					return nil
				}

				fmt.Fprintln(w)
				conns := make([][]string, 0, len(m.Connections))
				for _, c := range m.Connections {
					conns = append(conns, []string{c.ID, c.FromName, c.ToName})
				}
				return output.Table(w, []string{"connection", "from", "to"}, conns)
			})
		},
	}
}

func newMapsCreateCmd(a *app) *cobra.Command {
	var (
		name, center, layer string
		icons, connects     []string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Build and save a map from icons and cables",
		Long: `Build a map scene and save it as a new map.

Icons are given as type@lat,lng and numbered from 1 in the order given.
Cables join two icons by number, e.g. --connect 1:2.`,
		Example: `  catalogctl maps create --name Depot \
    --icon solar@40.71,-74.00 --icon battery@40.72,-74.01 --connect 1:2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := output.FromCmd(cmd)
			if err != nil {
				return err
			}

			s := editor.NewSession(a.client())
			if err := buildScene(s, name, center, layer, icons, connects); err != nil {
				return err
			}

			saved, err := s.Save(cmd.Context())
			if err != nil {
				return err
			}
			return f.Output(saved, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Saved map %d (%s) with %d icons and %d connections\n",
					saved.ID, saved.Name, len(saved.Icons), len(saved.Connections))
				return err
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "map name")
	cmd.Flags().StringVar(&center, "center", "", "map center as lat,lng (default: first icon)")
	cmd.Flags().StringVar(&layer, "layer", "", "base layer (satellite|street|hybrid)")
	cmd.Flags().StringArrayVar(&icons, "icon", nil, "icon as type@lat,lng (repeatable)")
	cmd.Flags().StringArrayVar(&connects, "connect", nil, "cable between icon numbers as from:to (repeatable)")
	cmd.MarkFlagRequired("name")
	return cmd
}

// buildScene replays the flags as editor actions on s
func buildScene(s *editor.Session, name, center, layer string, icons, connects []string) error {
	s.SetName(name)
	if err := s.SetLayer(models.Layer(layer)); err != nil {
		return err
	}

	placed := make([]models.Icon, 0, len(icons))
	for _, arg := range icons {
		typeID, pos, ok := strings.Cut(arg, "@")
		if !ok {
			return fmt.Errorf("invalid icon %q: want type@lat,lng", arg)
		}
		ll, err := parseLatLng(pos)
		if err != nil {
			return fmt.Errorf("invalid icon %q: %w", arg, err)
		}
		ic, err := s.PlaceAt(strings.TrimSpace(typeID), ll)
		if err != nil {
			return fmt.Errorf("invalid icon %q: %w", arg, err)
		}
		placed = append(placed, ic)
	}

	if center != "" {
		ll, err := parseLatLng(center)
		if err != nil {
			return fmt.Errorf("invalid center: %w", err)
		}
		if err := s.SetCenter(ll); err != nil {
			return fmt.Errorf("invalid center: %w", err)
		}
	} else if len(placed) > 0 {
		if err := s.SetCenter(placed[0].Position); err != nil {
			return err
		}
	}

	for _, c := range connects {
		from, to, err := parseLink(c, len(placed))
		if err != nil {
			return err
		}
		if err := s.StartCableMode(); err != nil {
			return err
		}
		if _, err := s.ClickIcon(placed[from].ID); err != nil {
			return err
		}
		if _, err := s.ClickIcon(placed[to].ID); err != nil {
			return err
		}
	}
	return nil
}

func parseLatLng(s string) (models.LatLng, error) {
	latStr, lngStr, ok := strings.Cut(s, ",")
	if !ok {
		return models.LatLng{}, fmt.Errorf("%q is not lat,lng", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return models.LatLng{}, fmt.Errorf("invalid latitude %q", latStr)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	if err != nil {
		return models.LatLng{}, fmt.Errorf("invalid longitude %q", lngStr)
	}
	ll := models.LatLng{Lat: lat, Lng: lng}
	return ll, ll.Validate()
}

// parseLink reads a 1-based from:to pair and returns 0-based indexes
func parseLink(s string, count int) (int, int, error) {
	fromStr, toStr, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid connection %q: want from:to", s)
	}
	from, err1 := strconv.Atoi(strings.TrimSpace(fromStr))
	to, err2 := strconv.Atoi(strings.TrimSpace(toStr))
	if err1 != nil || err2 != nil || from < 1 || to < 1 || from > count || to > count {
		return 0, 0, fmt.Errorf("invalid connection %q: icon numbers must be between 1 and %d", s, count)
	}
	if from == to {
		return 0, 0, fmt.Errorf("invalid connection %q: a cable needs two different icons", s)
	}
	return from - 1, to - 1, nil
}

func newMapsDeleteCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved map",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if !yes {
				return errors.New("deleting a map cannot be undone: re-run with --yes to confirm")
			}
			if err := a.client().DeleteMap(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to delete map %d: %w", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted map %d\n", id)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm deletion")
	return cmd
}

func newMapsLayersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "layers",
		Short: "List the available base layers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := output.FromCmd(cmd)
			if err != nil {
				return err
			}
			layers, err := a.client().Layers(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list layers: %w", err)
			}
			return f.Output(layers, func(w io.Writer) error {
				rows := make([][]string, 0, len(layers))
				for _, l := range layers {
					rows = append(rows, []string{string(l.Layer), l.URL})
				}
				return output.Table(w, []string{"layer", "tiles"}, rows)
			})
		},
	}
}
