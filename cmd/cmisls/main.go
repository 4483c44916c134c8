// Command cmisls browses a CMIS repository over the AtomPub binding.
//
//	cmisls --url http://localhost:8080/cmis/atom repos
//	cmisls --url http://localhost:8080/cmis/atom ls repo1 /Sites
//	cmisls --config cmis.yaml get repo1 /Sites/report.pdf --content > report.pdf
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	cmis "github.com/cmisgo/cmis.go"
	"github.com/cmisgo/cmis.go/pkg/models"
)

func main() {
	if err := newRootCommand(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

type options struct {
	config   string
	url      string
	user     string
	password string
	logLevel string
}

// parameters reads the config file, if any, and applies the flags on top.
func (o *options) parameters() (cmis.Parameters, error) {
	params := cmis.Parameters{}
	if o.config != "" {
		loaded, err := cmis.LoadParameters(o.config)
		if err != nil {
			return nil, err
		}
		params = loaded
	}
	for key, value := range map[string]string{
		cmis.ParamAtomPubURL: o.url,
		cmis.ParamUser:       o.user,
		cmis.ParamPassword:   o.password,
		cmis.ParamLogLevel:   o.logLevel,
	} {
		if value != "" {
			params[key] = value
		}
	}
	return params, nil
}

func (o *options) session() (*cmis.Session, error) {
	params, err := o.parameters()
	if err != nil {
		return nil, err
	}
	return cmis.NewSession(params)
}

func newRootCommand(out io.Writer) *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:           "cmisls",
		Short:         "Browse a CMIS repository over AtomPub",
		SilenceUsage: true,
	}
	root.SetOut(out)
	flags := root.PersistentFlags()
	flags.StringVar(&o.config, "config", "", "parameter file (yaml, json or toml)")
	flags.StringVar(&o.url, "url", "", "AtomPub service document URL")
	flags.StringVar(&o.user, "user", "", "user name")
	flags.StringVar(&o.password, "password", "", "password")
	flags.StringVar(&o.logLevel, "log-level", "", "log to stderr at this level")

	root.AddCommand(newReposCommand(o), newLsCommand(o), newGetCommand(o))
	return root
}

func newReposCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "repos",
		Short: "List the repositories of the endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := o.session()
			if err != nil {
				return err
			}
			defer session.Close()

			infos, err := session.GetRepositoryInfos(cmd.Context())
			if err != nil {
				return err
			}
			for _, info := range infos {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", info.ID, info.Name, info.RootFolderID)
			}
			return nil
		},
	}
}

func newLsCommand(o *options) *cobra.Command {
	var pageSize int
	cmd := &cobra.Command{
		Use:   "ls <repository> [folder id or path]",
		Short: "List the children of a folder, the root folder by default",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := o.session()
			if err != nil {
				return err
			}
			defer session.Close()

			ctx := cmd.Context()
			repositoryID := args[0]
			info, err := session.GetRepositoryInfo(ctx, repositoryID)
			if err != nil {
				return err
			}
			target := info.RootFolderID
			if len(args) == 2 {
				target = args[1]
			}
			folder, err := resolve(ctx, session, repositoryID, target)
			if err != nil {
				return err
			}

			opts := &cmis.NavigationOptions{MaxItems: pageSize}
			for {
				page, err := session.GetChildren(ctx, repositoryID, folder.ID(), opts)
				if err != nil {
					return err
				}
				for _, child := range page.Objects {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", child.Object.BaseTypeID(), child.Object.ID(), child.Object.Name())
				}
				if !page.HasMoreItems || len(page.Objects) == 0 {
					return nil
				}
				opts.SkipCount += len(page.Objects)
			}
		},
	}
	cmd.Flags().IntVar(&pageSize, "page-size", 100, "children fetched per request")
	return cmd
}

func newGetCommand(o *options) *cobra.Command {
	var content bool
	cmd := &cobra.Command{
		Use:   "get <repository> <object id or path>",
		Short: "Print the properties of an object, or its content",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := o.session()
			if err != nil {
				return err
			}
			defer session.Close()

			ctx := cmd.Context()
			repositoryID := args[0]
			if _, err := session.GetRepositoryInfo(ctx, repositoryID); err != nil {
				return err
			}
			obj, err := resolve(ctx, session, repositoryID, args[1])
			if err != nil {
				return err
			}

			if content {
				cs, err := session.GetContentStream(ctx, repositoryID, obj.ID(), "")
				if err != nil {
					return err
				}
				defer cs.Stream.Close()
				_, err = io.Copy(cmd.OutOrStdout(), cs.Stream)
				return err
			}
			printProperties(cmd.OutOrStdout(), obj)
			return nil
		},
	}
	cmd.Flags().BoolVar(&content, "content", false, "write the content stream instead of the properties")
	return cmd
}

// resolve reads an object by path when target starts with "/", else by id.
func resolve(ctx context.Context, session *cmis.Session, repositoryID, target string) (*models.ObjectData, error) {
	if strings.HasPrefix(target, "/") {
		return session.GetObjectByPath(ctx, repositoryID, target, nil)
	}
	return session.GetObject(ctx, repositoryID, target, nil)
}

func printProperties(w io.Writer, obj *models.ObjectData) {
	if obj.Properties == nil {
		return
	}
	for _, p := range obj.Properties.Items {
		if p.Type() == "" {
			continue
		}
		fmt.Fprintf(w, "%s = %s\n", p.ID, strings.Join(p.Values, ", "))
	}
}
