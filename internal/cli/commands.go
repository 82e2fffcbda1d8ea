package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

const minSearchLength = 2

func (c *cli) currentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Weather for the configured position",
		Args:  cobra.NoArgs,
		RunE:  c.runCurrent,
	}
}

func (c *cli) runCurrent(cmd *cobra.Command, _ []string) error {
	c.coord.FetchWeatherByLocation(cmd.Context())
	return c.printState(cmd)
}

func (c *cli) cityCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "city <name>",
		Short:   "Weather for a city",
		Example: `  weatherctl city "New York"` + "\n" + `  weatherctl city paris --units imperial`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.coord.FetchWeatherByCity(cmd.Context(), strings.Join(args, " "))
			return c.printState(cmd)
		},
	}
}

func (c *cli) searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Find cities matching a name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.TrimSpace(strings.Join(args, " "))
			if len([]rune(query)) < minSearchLength {
				return fmt.Errorf("query must be at least %d characters", minSearchLength)
			}

			cities, err := c.coord.SearchCities(cmd.Context(), query)
			if err != nil {
				return err
			}
			if c.asJSON {
				return writeJSON(cmd, cities)
			}
			printCities(cmd.OutOrStdout(), cities)
			return nil
		},
	}
}

func (c *cli) favoritesCmd() *cobra.Command {
	list := func(cmd *cobra.Command, _ []string) error {
		favorites := c.coord.State().Favorites
		if c.asJSON {
			return writeJSON(cmd, favorites)
		}
		if len(favorites) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No favorite cities yet.")
			return nil
		}
		for _, city := range favorites {
			fmt.Fprintln(cmd.OutOrStdout(), city)
		}
		return nil
	}

	favoritesCmd := &cobra.Command{
		Use:     "favorites",
		Aliases: []string{"fav"},
		Short:   "List and edit favorite cities",
		Args:    cobra.NoArgs,
		RunE:    list,
	}

	favoritesCmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List favorite cities",
			Args:  cobra.NoArgs,
			RunE:  list,
		},
		&cobra.Command{
			Use:   "add <city>",
			Short: "Add a city to favorites",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				c.coord.AddToFavorites(cmd.Context(), strings.Join(args, " "))
				return list(cmd, nil)
			},
		},
		&cobra.Command{
			Use:     "remove <city>",
			Aliases: []string{"rm"},
			Short:   "Remove a city from favorites",
			Args:    cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				c.coord.RemoveFromFavorites(cmd.Context(), strings.Join(args, " "))
				return list(cmd, nil)
			},
		},
	)
	return favoritesCmd
}

func (c *cli) unitCmd() *cobra.Command {
	unitCmd := &cobra.Command{
		Use:   "unit",
		Short: "Show the saved unit system",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), c.coord.State().Unit)
			return nil
		},
	}

	unitCmd.AddCommand(&cobra.Command{
		Use:   "toggle",
		Short: "Switch between metric and imperial and save the choice",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c.coord.ToggleUnit(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), c.coord.State().Unit)
			return nil
		},
	})
	return unitCmd
}

func (c *cli) iconCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "icon <code>",
		Short: "Print the image URL of a condition icon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), c.coord.IconURL(args[0]))
			return nil
		},
	}
}

// printState renders the snapshot after a fetch. An error without data fails
// the command; an error next to data is an advisory.
func (c *cli) printState(cmd *cobra.Command) error {
	s := c.coord.State()
	if s.WeatherData == nil {
		if s.Error != "" {
			return errors.New(s.Error)
		}
		return errors.New("no weather data")
	}

	if c.asJSON {
		return writeJSON(cmd, s)
	}
	if s.Error != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), s.Error)
	}
	printWeather(cmd.OutOrStdout(), *s.WeatherData, s.Unit, nowFunc())
	return nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
