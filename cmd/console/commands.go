package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"cv-site/internal/config"
	"cv-site/internal/domain"
	"cv-site/internal/session"
	"cv-site/internal/usecase"
	"cv-site/pkg/cvapi"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// env holds what every command needs. Unset fields are filled from the
// configuration before the first command runs.
type env struct {
	client *cvapi.Client
	store  session.Store
}

func (e *env) init() error {
	if e.client != nil && e.store != nil {
		return nil
	}
	cfg, err := config.Load("")
	if err != nil {
		return err
	}
	cfg.Logger()
	if e.client == nil {
		e.client = cvapi.NewClient(cfg.APIURL, cfg.HTTPTimeout)
	}
	if e.store == nil {
		fs, err := session.OpenFileStore(cfg.SessionFile)
		if err != nil {
			return err
		}
		e.store = fs
	}
	return nil
}

func (e *env) session() *session.Session {
	return session.New(e.store, func(token string) session.Identity {
		return e.client.WithToken(token)
	})
}

func newRootCmd(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:   "cv-console",
		Short: "Edit the CV from the terminal",
		Long: `cv-console signs in to the CV service and edits the CV document.

Edits are local until an action saves them:
  cv-console do save:workExperience:0 --set workExperience.0.title="QA Director"
  cv-console do delete:skills:7 --confirm`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.init()
		},
	}
	root.AddCommand(
		loginCmd(e),
		logoutCmd(e),
		whoamiCmd(e),
		themeCmd(e),
		showCmd(e),
		doCmd(e),
	)
	return root
}

func loginCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "login <token>",
		Short: "Store an access token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess := e.session()
			if err := sess.Login(cmd.Context(), strings.TrimSpace(args[0])); err != nil {
				return err
			}
			if !sess.User().Authenticated {
				return errors.New("token rejected by the CV service")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", describe(sess.User()))
			return nil
		},
	}
}

func logoutCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.session().Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func whoamiCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess := e.session()
			if err := sess.Init(cmd.Context()); err != nil {
				return err
			}
			if !sess.User().Authenticated {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), describe(sess.User()))
			return nil
		},
	}
}

func themeCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [dark|light|toggle]",
		Short:     "Show or change the theme preference",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"dark", "light", "toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			sess := e.session()
			if len(args) == 1 {
				var next session.Theme
				switch args[0] {
				case "toggle":
					next = sess.Theme().Toggle()
				case string(session.ThemeDark), string(session.ThemeLight):
					next = session.Theme(args[0])
				default:
					return fmt.Errorf("unknown theme %q", args[0])
				}
				if err := sess.SetTheme(next); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), sess.Theme())
			return nil
		},
	}
}

func showCmd(e *env) *cobra.Command {
	var asYAML bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the CV document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sync := usecase.NewSynchronizer(e.client)
			if err := sync.Load(cmd.Context()); err != nil {
				return err
			}
			doc, _ := sync.Document()
			if asYAML {
				return writeYAML(cmd.OutOrStdout(), doc)
			}
			writeSummary(cmd.OutOrStdout(), doc)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Print the whole document as YAML")
	return cmd
}

func doCmd(e *env) *cobra.Command {
	var (
		sets    []string
		confirm bool
	)
	cmd := &cobra.Command{
		Use:   "do <action>...",
		Short: "Apply field edits and run console actions",
		Long: `Loads the CV, applies every --set path=value and then runs the actions in order.

Actions: edit, reload, save:personalInfo, save:<kind>:<index>, create:<kind>,
delete:<kind>:<id>, add:<list>, remove:<list>:<index>.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actions := make([]usecase.Action, 0, len(args))
			for _, a := range args {
				action, err := usecase.ParseAction(a)
				if err != nil {
					return err
				}
				actions = append(actions, action)
			}
			assignments := make([]usecase.Assignment, 0, len(sets))
			for _, s := range sets {
				a, err := usecase.ParseAssignment(s)
				if err != nil {
					return err
				}
				assignments = append(assignments, a)
			}

			ctx := cmd.Context()
			sess := e.session()
			if err := sess.Init(ctx); err != nil {
				return err
			}
			if !sess.IsAdmin() {
				return errors.New("sign in as an administrator first")
			}

			sync := usecase.NewSynchronizer(e.client.WithToken(sess.Token()))
			if err := sync.Load(ctx); err != nil {
				return err
			}
			for _, a := range assignments {
				if err := sync.SetField(a.Path, a.Value); err != nil {
					return err
				}
			}
			for _, action := range actions {
				msg, err := action.Apply(ctx, sync, confirm)
				if msg != "" {
					fmt.Fprintln(cmd.OutOrStdout(), msg)
				}
				if errors.Is(err, cvapi.ErrUnauthorized) {
					_ = sess.Logout()
					return fmt.Errorf("%s: token no longer accepted, sign in again: %w", action, err)
				}
				if err != nil {
					return fmt.Errorf("%s: %w", action, err)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Field edit as path=value (repeatable)")
	cmd.Flags().BoolVar(&confirm, "confirm", false, "Confirm deletions")
	return cmd
}

func describe(u domain.AuthUser) string {
	if u.IsAdmin {
		return u.Email + " (admin)"
	}
	return u.Email
}

// writeYAML prints doc with the sub-documents in their decoded form.
func writeYAML(w io.Writer, doc domain.CvDocument) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	var tree map[string]any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return err
	}
	if info, ok := tree["personalInfo"].(map[string]any); ok {
		info["leadershipPoints"] = doc.PersonalInfo.Leadership
		info["productPortfolio"] = doc.PersonalInfo.Portfolio
		info["expertiseAreas"] = doc.PersonalInfo.Expertise
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(tree); err != nil {
		return err
	}
	return enc.Close()
}

func writeSummary(w io.Writer, doc domain.CvDocument) {
	p := doc.PersonalInfo
	fmt.Fprintf(w, "%s - %s\n", p.Name, p.Title)
	fmt.Fprintf(w, "  leadershipPoints: %d, productPortfolio: %d, expertiseAreas: %d\n",
		len(p.Leadership), len(p.Portfolio), len(p.Expertise))
	for _, kind := range domain.CollectionKinds {
		items := doc.Entities(kind)
		fmt.Fprintf(w, "%s (%d)\n", kind, len(items))
		for i, it := range items {
			id := "-"
			if n, ok := it.EntityID(); ok {
				id = fmt.Sprint(n)
			}
			fmt.Fprintf(w, "  %d [id %s] %s\n", i, id, title(it))
		}
	}
}

func title(e domain.Entity) string {
	switch v := e.(type) {
	case domain.WorkExperience:
		return v.Title + " @ " + v.Company
	case domain.Education:
		return v.Degree + ", " + v.School
	case domain.Skill:
		return v.Name
	case domain.Certificate:
		return v.Name
	case domain.Language:
		return v.Name
	case domain.Strength:
		return v.Name
	}
	return ""
}
