package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

type seedVariant struct {
	Row   string
	Seat  string
	Cents int64
}

type seedOffer struct {
	TicketType  string
	Delivery    string
	FeeCents    int64
	Purchasable bool
	PaymentLink string
	ExpiresIn   time.Duration
	Variants    []seedVariant
}

type seedEvent struct {
	Title  string
	Venue  string
	City   string
	InDays int
	Offers []seedOffer
}

var demo = []seedEvent{
	{
		Title: "Vasco Rossi Live 2026", Venue: "Stadio San Siro", City: "Milano", InDays: 45,
		Offers: []seedOffer{
			{TicketType: "Prato Gold", Delivery: "Eventim", FeeCents: 350, Purchasable: true, PaymentLink: "https://pay.example.com/vasco-gold", ExpiresIn: 72 * time.Hour,
				Variants: []seedVariant{{"A", "12", 8900}, {"A", "13", 8900}}},
			{TicketType: "Tribuna Rossa", Delivery: "Ticketone", FeeCents: 200, Purchasable: true, PaymentLink: "tr-7731",
				Variants: []seedVariant{{"14", "3", 6500}, {"14", "4", 6500}, {"14", "5", 6250}}},
			{TicketType: "Parterre", Delivery: "Eventim", FeeCents: 0, Purchasable: false,
				Variants: []seedVariant{{"", "", 5500}}},
		},
	},
	{
		Title: "Ligabue Campovolo", Venue: "RCF Arena", City: "Reggio Emilia", InDays: 90,
		Offers: []seedOffer{
			{TicketType: "Posto Unico", Delivery: "Eventim", FeeCents: 150, Purchasable: true, PaymentLink: "https://pay.example.com/liga",
				Variants: []seedVariant{{"", "", 4990}, {"", "", 4990}, {"", "", 4990}, {"", "", 4990}}},
		},
	},
	{
		Title: "Jazz al Castello", Venue: "Castello Sforzesco", City: "Milano", InDays: 20,
	},
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("ping db: %v", err)
	}

	now := time.Now().UTC()
	for _, ev := range demo {
		if err := seed(db, ev, now); err != nil {
			log.Printf("seed %q: %v", ev.Title, err)
			continue
		}
		fmt.Printf("seeded %s (%d offers)\n", ev.Title, len(ev.Offers))
	}
	log.Println("seeding completed")
}

func seed(db *sql.DB, ev seedEvent, now time.Time) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	eventID := uuid.New()
	res, err := tx.Exec(`
		INSERT INTO events (id, slug, title, venue, city, event_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (slug) DO NOTHING`,
		eventID, slug.Make(ev.Title), ev.Title, ev.Venue, ev.City, now.AddDate(0, 0, ev.InDays))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("slug %q already present", slug.Make(ev.Title))
	}

	for pos, o := range ev.Offers {
		offerID := uuid.New()
		var expires any
		if o.ExpiresIn > 0 {
			expires = now.Add(o.ExpiresIn)
		}
		if _, err := tx.Exec(`
			INSERT INTO offers (id, event_id, position, ticket_type, delivery_method, service_fee_cents, is_purchasable, payment_link, expires_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			offerID, eventID, pos, o.TicketType, o.Delivery, o.FeeCents, o.Purchasable, o.PaymentLink, expires); err != nil {
			return err
		}
		for vpos, v := range o.Variants {
			if _, err := tx.Exec(`
				INSERT INTO offer_variants (id, offer_id, position, row_label, seat_number, base_price_cents)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				uuid.New(), offerID, vpos, v.Row, v.Seat, v.Cents); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}
