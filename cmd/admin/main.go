package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"boltadmin/internal/api"
	"boltadmin/internal/apperr"
	"boltadmin/internal/assist"
	"boltadmin/internal/catalog"
	"boltadmin/internal/config"
	"boltadmin/internal/session"
	"boltadmin/internal/upload"
	"boltadmin/pkg/models"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const usage = `Usage: admin <command> [flags]

Commands:
  login    -id-token <credential>        exchange a Google credential for a session
  whoami                                 show the current session
  logout                                 clear the session
  list     [-page N] [-per-page N] [-category C] [-search Q]
  add      [product flags]               create a product
  update   -id <id> [product flags]      update a product
  delete   -id <id> [-yes]               delete a product
  upload   <files...>                    upload images, print hosted URLs
`

func main() {
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("loaded .env")
	}

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	app := newApp(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	switch os.Args[1] {
	case "login":
		err = app.login(ctx, os.Args[2:])
	case "whoami":
		err = app.whoami(ctx)
	case "logout":
		app.sessions.Clear()
		fmt.Println("Logged out.")
	case "list":
		err = app.list(ctx, os.Args[2:])
	case "add":
		err = app.save(ctx, os.Args[2:], false)
	case "update":
		err = app.save(ctx, os.Args[2:], true)
	case "delete":
		err = app.delete(ctx, os.Args[2:])
	case "upload":
		err = app.upload(ctx, os.Args[2:])
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		msg := err.Error()
		if _, ok := apperr.As(err); ok {
			msg = apperr.PublicMessage(err)
		}
		fmt.Fprintln(os.Stderr, "Error:", msg)
		log.Debug().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

type app struct {
	cfg      *config.Config
	backend  *api.Client
	sessions *session.Store
	uploader upload.Uploader
}

func newApp(cfg *config.Config) *app {
	backend := api.NewClient(cfg.APIBaseURL)

	var uploader upload.Uploader
	if cfg.ImageStorage == "s3" {
		s3up, err := upload.NewS3Uploader(cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to configure S3 image storage")
		}
		uploader = s3up
	} else {
		uploader = upload.NewImgBBClient(cfg.ImgBBEndpoint, cfg.ImgBBKey)
	}

	return &app{
		cfg:      cfg,
		backend:  backend,
		sessions: session.NewStore(cfg.StateDir, backend),
		uploader: uploader,
	}
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	idToken := fs.String("id-token", "", "Google identity credential")
	fs.Parse(args)

	if *idToken == "" {
		return fmt.Errorf("an -id-token is required")
	}

	result, err := a.backend.Login(ctx, *idToken)
	if err != nil {
		return err
	}
	if err := a.sessions.Establish(result.AccessToken, result.Admin); err != nil {
		return err
	}

	fmt.Printf("Logged in as %s <%s>\n", result.Admin.Name, result.Admin.Email)
	return nil
}

func (a *app) whoami(ctx context.Context) error {
	a.sessions.Restore(ctx)
	admin := a.sessions.Admin()
	if !a.sessions.Authenticated() || admin == nil {
		return apperr.AuthErr("Not logged in.")
	}
	fmt.Printf("%s <%s>\n", admin.Name, admin.Email)
	return nil
}

func (a *app) list(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	page := fs.Int("page", 1, "page number")
	perPage := fs.Int("per-page", 50, "items per page")
	category := fs.String("category", catalog.CategoryAll, "category filter")
	search := fs.String("search", "", "search term")
	fs.Parse(args)

	listing := catalog.NewListing(a.backend, a.sessions)
	if err := listing.FetchPage(ctx, *page, *perPage); err != nil {
		return err
	}

	products := catalog.Filter(listing.Products(), *category, *search)
	if len(products) == 0 {
		fmt.Println("No products found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tPRICE\tSTOCK\tACTIVE\tSALES")
	for _, p := range products {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%d\t%t\t%d\n",
			p.ID, p.Name, p.Category, p.Price, p.Stock, p.IsActive, p.Sales)
	}
	return w.Flush()
}

// multiFlag collects a repeatable string flag.
type multiFlag []string

func (m *multiFlag) String() string     { return strings.Join(*m, ",") }
func (m *multiFlag) Set(v string) error { *m = append(*m, v); return nil }

func (a *app) save(ctx context.Context, args []string, isUpdate bool) error {
	fs := flag.NewFlagSet("save", flag.ExitOnError)
	id := fs.String("id", "", "product id (update only)")
	name := fs.String("name", "", "product name")
	description := fs.String("description", "", "product description")
	price := fs.Float64("price", 0, "price")
	originalPrice := fs.Float64("original-price", 0, "original price, must exceed price")
	categories := fs.String("categories", "", "comma separated categories")
	brand := fs.String("brand", catalog.DefaultBrand, "brand")
	material := fs.String("material", "", "material")
	sizes := fs.String("sizes", "", "comma separated sizes")
	colors := fs.String("colors", "", "comma separated colors")
	featured := fs.Bool("featured", false, "featured product")
	active := fs.Bool("active", true, "active product")
	suggest := fs.Bool("suggest", false, "generate a description with AI assist")
	var images multiFlag
	fs.Var(&images, "image", "local image file (repeatable)")
	var imageURLs multiFlag
	fs.Var(&imageURLs, "image-url", "already hosted image URL (repeatable)")
	fs.Parse(args)

	if isUpdate && *id == "" {
		return fmt.Errorf("an -id is required for update")
	}

	a.sessions.Restore(ctx)

	description2 := *description
	if *suggest && description2 == "" {
		if a.cfg.OpenAIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is not set, cannot suggest a description")
		}
		suggestion, err := assist.NewDescriptionGenerator(a.cfg.OpenAIKey).Suggest(ctx, *name)
		if err != nil {
			return err
		}
		description2 = suggestion.Description
		fmt.Println("Suggested description:")
		fmt.Println(description2)
	}

	workflow := catalog.NewWorkflow(a.sessions, a.backend, a.uploader)
	if isUpdate {
		workflow.LoadFrom(models.Product{ID: models.FlexID(*id)})
	}
	workflow.Observe(func(index, percent int) {
		fmt.Printf("  image %d: %d%%\n", index+1, percent)
	})

	workflow.Edit(func(d *catalog.ProductDraft) {
		d.Name = *name
		d.Description = description2
		d.Price = *price
		if *originalPrice > 0 {
			op := *originalPrice
			d.OriginalPrice = &op
		}
		d.Categories = models.SplitList(*categories)
		d.Brand = *brand
		d.Material = *material
		d.Sizes = models.SplitList(*sizes)
		d.Colors = models.SplitList(*colors)
		d.IsFeatured = *featured
		d.IsActive = *active
		d.ImageURLs = imageURLs
	})

	for _, path := range images {
		f, err := upload.FromPath(path)
		if err != nil {
			return err
		}
		workflow.Edit(func(d *catalog.ProductDraft) {
			d.AddPendingImage(f, "")
		})
	}

	if err := workflow.Submit(ctx); err != nil {
		return err
	}
	for _, r := range workflow.Rejected() {
		fmt.Println("Skipped:", r.Reason)
	}

	if isUpdate {
		fmt.Println("Product updated successfully!")
	} else {
		fmt.Println("Product added successfully!")
	}
	return nil
}

func (a *app) delete(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	id := fs.String("id", "", "product id")
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	fs.Parse(args)

	if *id == "" {
		return fmt.Errorf("an -id is required")
	}

	a.sessions.Restore(ctx)
	listing := catalog.NewListing(a.backend, a.sessions)

	confirmed := *yes
	err := listing.Delete(ctx, models.FlexID(*id), func() bool {
		if confirmed {
			return true
		}
		fmt.Printf("Delete product %s? This cannot be undone. [y/N] ", *id)
		var answer string
		fmt.Scanln(&answer)
		confirmed = strings.EqualFold(answer, "y")
		return confirmed
	})
	if err != nil {
		return err
	}
	if confirmed {
		fmt.Println("Product deleted.")
	} else {
		fmt.Println("Aborted.")
	}
	return nil
}

func (a *app) upload(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return fmt.Errorf("no files given")
	}

	files := make([]upload.File, 0, len(paths))
	for _, path := range paths {
		f, err := upload.FromPath(path)
		if err != nil {
			return err
		}
		files = append(files, f)
	}

	urls, rejected, err := a.uploader.Upload(ctx, files, func(index, percent int) {
		fmt.Printf("  %s: %d%%\n", files[index].Name, percent)
	})
	for _, r := range rejected {
		fmt.Println("Skipped:", r.Reason)
	}
	if err != nil {
		return err
	}
	for _, u := range urls {
		fmt.Println(u)
	}
	return nil
}
