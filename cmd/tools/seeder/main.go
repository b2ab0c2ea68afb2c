package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	seedSettings(db)
	seedProducts(db)
	seedCustomers(db)
	seedSellers(db)

	log.Println("Seeding completed successfully!")
}

func seedSettings(db *sql.DB) {
	fmt.Println("Seeding Company Settings...")
	_, err := db.Exec(`
		INSERT INTO company_settings (id, tax_rate_bps)
		VALUES (1, 600)
		ON CONFLICT (id) DO NOTHING;
	`)
	if err != nil {
		log.Printf("Failed to seed settings: %v", err)
	}
}

func seedProducts(db *sql.DB) {
	// Prices in minor units, commission rates in basis points.
	products := []struct {
		Name           string
		SKU            string
		SalePrice      int64
		CommissionBps  int64
		PaysCommission bool
	}{
		{"Consultoria inicial", "SRV-001", 45000, 500, true},
		{"Manutencao mensal", "SRV-002", 89900, 600, true},
		{"Instalacao padrao", "SRV-003", 25000, 400, true},
		{"Visita tecnica", "SRV-004", 12000, 300, true},
		{"Treinamento de equipe", "SRV-005", 150000, 800, true},
		{"Suporte avulso", "SRV-006", 8000, 0, false},
		{"Auditoria completa", "SRV-007", 320000, 1000, true},
		{"Plano anual", "SRV-008", 960000, 700, true},
	}

	fmt.Println("Seeding Products...")
	for _, p := range products {
		_, err := db.Exec(`
			INSERT INTO products (name, sku, sale_price, commission_rate_bps, pays_commission)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (sku) DO UPDATE SET
				name = EXCLUDED.name,
				sale_price = EXCLUDED.sale_price,
				commission_rate_bps = EXCLUDED.commission_rate_bps,
				pays_commission = EXCLUDED.pays_commission;
		`, p.Name, p.SKU, p.SalePrice, p.CommissionBps, p.PaysCommission)
		if err != nil {
			log.Printf("Failed to seed product %s: %v", p.SKU, err)
		}
	}
}

func seedCustomers(db *sql.DB) {
	customers := []struct {
		Name  string
		Email string
		Phone string
	}{
		{"Ana Souza", "ana@example.com", "+55 11 91234-0001"},
		{"Bruno Lima", "bruno@example.com", "+55 11 91234-0002"},
		{"Carla Mendes", "carla@example.com", "+55 11 91234-0003"},
		{"Diego Alves", "diego@example.com", "+55 11 91234-0004"},
		{"Elisa Rocha", "elisa@example.com", "+55 11 91234-0005"},
		{"Felipe Costa", "felipe@example.com", "+55 11 91234-0006"},
		{"Gabriela Nunes", "gabriela@example.com", "+55 11 91234-0007"},
		{"Hugo Martins", "hugo@example.com", "+55 11 91234-0008"},
	}

	fmt.Println("Seeding Customers...")
	for _, c := range customers {
		_, err := db.Exec(`
			INSERT INTO customers (name, email, phone)
			VALUES ($1, $2, $3)
			ON CONFLICT (email) DO NOTHING;
		`, c.Name, c.Email, c.Phone)
		if err != nil {
			log.Printf("Failed to seed customer %s: %v", c.Email, err)
		}
	}
}

func seedSellers(db *sql.DB) {
	sellers := []struct {
		Name          string
		Phone         string
		CommissionBps int64
	}{
		{"Marcos Pereira", "+55 11 95555-0001", 500},
		{"Juliana Castro", "+55 11 95555-0002", 600},
		{"Rafael Dias", "+55 11 95555-0003", 450},
	}

	fmt.Println("Seeding Sellers...")
	for _, s := range sellers {
		var exists bool
		if err := db.QueryRow(`SELECT EXISTS (SELECT 1 FROM sellers WHERE name = $1)`, s.Name).Scan(&exists); err != nil {
			log.Printf("Failed to check seller %s: %v", s.Name, err)
			continue
		}
		if exists {
			continue
		}
		_, err := db.Exec(`
			INSERT INTO sellers (name, phone, commission_rate_bps)
			VALUES ($1, $2, $3);
		`, s.Name, s.Phone, s.CommissionBps)
		if err != nil {
			log.Printf("Failed to seed seller %s: %v", s.Name, err)
		}
	}
}
