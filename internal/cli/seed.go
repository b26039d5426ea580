package cli

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/schoolshelf/librarian/internal/audit"
	"github.com/schoolshelf/librarian/internal/books"
	"github.com/schoolshelf/librarian/internal/config"
	"github.com/schoolshelf/librarian/internal/database"
	auditrepo "github.com/schoolshelf/librarian/internal/database/audit"
	bookrepo "github.com/schoolshelf/librarian/internal/database/books"
	loanrepo "github.com/schoolshelf/librarian/internal/database/loans"
	studentrepo "github.com/schoolshelf/librarian/internal/database/students"
	"github.com/schoolshelf/librarian/internal/loans"
	"github.com/schoolshelf/librarian/internal/students"
)

// SeedCommand loads a small sample catalog, a handful of students and a few
// loans so a fresh install has something to show.
type SeedCommand struct {
	DatabasePath string
}

func NewSeedCommand() *SeedCommand {
	return &SeedCommand{}
}

func (cmd *SeedCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s seed [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Populate the database with a sample catalog, students and loans.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *SeedCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	bookRepo := bookrepo.NewRepository(db.DB)
	studentRepo := studentrepo.NewRepository(db.DB)
	loanRepo := loanrepo.NewRepository(db.DB)
	auditRepo := auditrepo.NewRepository(db.DB)

	auditService := audit.NewService(auditRepo, audit.DefaultDedupWindow)
	bookService := books.NewService(db.DB, bookRepo, loanRepo, auditService)
	studentService := students.NewService(studentRepo)
	loanService := loans.NewService(db.DB, loanRepo, bookRepo, studentRepo, config.DefaultLoanPeriodDays)

	fmt.Println("Seeding database...")

	sampleBooks := []books.CreateBookData{
		{
			Title:       "Dom Casmurro",
			Author:      "Machado de Assis",
			ISBN:        strPtr("978-85-7232-000-0"),
			Genre:       "Literatura Brasileira",
			Publisher:   "Editora Nova Aguilar",
			Year:        intPtr(1899),
			Quantity:    3,
			Location:    "Prateleira A1",
			Description: "Romance clássico da literatura brasileira",
		},
		{
			Title:       "O Cortiço",
			Author:      "Aluísio Azevedo",
			ISBN:        strPtr("978-85-7232-001-0"),
			Genre:       "Literatura Brasileira",
			Publisher:   "Editora Ática",
			Year:        intPtr(1890),
			Quantity:    2,
			Location:    "Prateleira A2",
			Description: "Romance naturalista brasileiro",
		},
		{
			Title:       "Grande Sertão: Veredas",
			Author:      "João Guimarães Rosa",
			ISBN:        strPtr("978-85-7232-002-0"),
			Genre:       "Literatura Brasileira",
			Publisher:   "Editora Nova Fronteira",
			Year:        intPtr(1956),
			Quantity:    2,
			Location:    "Prateleira A3",
			Description: "Obra-prima da literatura brasileira",
		},
		{
			Title:       "O Pequeno Príncipe",
			Author:      "Antoine de Saint-Exupéry",
			ISBN:        strPtr("978-85-7232-003-0"),
			Genre:       "Literatura Infantil",
			Publisher:   "Editora Geração",
			Year:        intPtr(1943),
			Quantity:    4,
			Location:    "Prateleira B1",
			Description: "Clássico da literatura infantil mundial",
		},
		{
			Title:       "Harry Potter e a Pedra Filosofal",
			Author:      "J.K. Rowling",
			ISBN:        strPtr("978-85-7232-004-0"),
			Genre:       "Fantasia",
			Publisher:   "Editora Rocco",
			Year:        intPtr(1997),
			Quantity:    3,
			Location:    "Prateleira C1",
			Description: "Primeiro livro da série Harry Potter",
		},
	}

	bookIDs := make([]uint, 0, len(sampleBooks))
	for _, data := range sampleBooks {
		book, err := bookService.Create(data, 0)
		if err != nil {
			return fmt.Errorf("failed to create book %q: %w", data.Title, err)
		}
		bookIDs = append(bookIDs, book.ID)
	}
	fmt.Printf("Created %d books\n", len(bookIDs))

	sampleStudents := []students.CreateStudentData{
		{Name: "João Silva", Email: "joao.silva@email.com", Registration: "2024001", Grade: "6º Ano", Class: "6A", Phone: "(11) 99999-1111", Address: "Rua das Flores, 123"},
		{Name: "Maria Santos", Email: "maria.santos@email.com", Registration: "2024002", Grade: "7º Ano", Class: "7B", Phone: "(11) 99999-2222", Address: "Av. Principal, 456"},
		{Name: "Pedro Oliveira", Email: "pedro.oliveira@email.com", Registration: "2024003", Grade: "8º Ano", Class: "8A", Phone: "(11) 99999-3333", Address: "Rua do Comércio, 789"},
		{Name: "Ana Costa", Email: "ana.costa@email.com", Registration: "2024004", Grade: "9º Ano", Class: "9B", Phone: "(11) 99999-4444", Address: "Rua das Palmeiras, 321"},
		{Name: "Lucas Ferreira", Email: "lucas.ferreira@email.com", Registration: "2024005", Grade: "6º Ano", Class: "6B", Phone: "(11) 99999-5555", Address: "Av. das Árvores, 654"},
	}

	studentIDs := make([]uint, 0, len(sampleStudents))
	for _, data := range sampleStudents {
		student, err := studentService.Create(data)
		if err != nil {
			return fmt.Errorf("failed to create student %q: %w", data.Name, err)
		}
		studentIDs = append(studentIDs, student.ID)
	}
	fmt.Printf("Created %d students\n", len(studentIDs))

	now := time.Now()
	sampleLoans := []loans.CreateLoanData{
		{BookID: bookIDs[0], StudentID: studentIDs[0], DueDate: timePtr(now.AddDate(0, 0, 14)), Notes: "Primeiro empréstimo do aluno"},
		{BookID: bookIDs[1], StudentID: studentIDs[1], DueDate: timePtr(now.AddDate(0, 0, 7)), Notes: "Empréstimo para trabalho escolar"},
		{BookID: bookIDs[2], StudentID: studentIDs[2], DueDate: timePtr(now.AddDate(0, 0, -2)), Notes: "Empréstimo em atraso"},
	}

	for _, data := range sampleLoans {
		if _, err := loanService.Create(data); err != nil {
			return fmt.Errorf("failed to create loan: %w", err)
		}
	}
	fmt.Printf("Created %d loans\n", len(sampleLoans))

	fmt.Println("Seed completed successfully")
	return nil
}

func strPtr(s string) *string        { return &s }
func intPtr(i int) *int              { return &i }
func timePtr(t time.Time) *time.Time { return &t }
