package store

import (
	"fmt"
	"os"
	"strings"

	"github.com/devcoelho/gobank/internal/bank"
)

// Save writes the full registry snapshot. Each file is written to a
// temporary sibling and renamed into place, so a crash mid-save never
// leaves a corrupt file behind.
func (s *Store) Save(b *bank.Bank) error {
	if err := s.saveClients(b); err != nil {
		return err
	}
	return s.saveAccounts(b)
}

func (s *Store) saveClients(b *bank.Bank) error {
	var lines []string
	for _, c := range b.Clients() {
		lines = append(lines, strings.Join([]string{"CLIENT", c.Name, c.CPF}, fieldSep))
		for _, addr := range c.Addresses {
			lines = append(lines, strings.Join([]string{
				"ADDRESS",
				c.CPF,
				addr.Street,
				addr.Number,
				addr.Complement,
				addr.Neighborhood,
				addr.City,
				string(addr.State),
				addr.CEP,
				addr.Category,
				addr.LocationCategory,
			}, fieldSep))
		}
	}
	if err := writeLines(s.path(clientsFile), lines); err != nil {
		return persistErr("save clients", err)
	}
	return nil
}

func (s *Store) saveAccounts(b *bank.Bank) error {
	var accountLines, investmentLines, transactionLines []string

	for _, a := range b.Accounts() {
		accountLines = append(accountLines, strings.Join([]string{
			fmt.Sprintf("%d", a.Number()),
			a.Agency(),
			a.Balance().String(),
			a.Client().CPF,
			string(a.Kind()),
			a.Rate().String(),
			a.OpenedAt().Format(timeLayout),
		}, fieldSep))

		for _, inv := range a.Investments() {
			investmentLines = append(investmentLines, strings.Join([]string{
				fmt.Sprintf("%d", a.Number()),
				inv.Name(),
				inv.Principal().String(),
				inv.Rate().String(),
			}, fieldSep))
		}

		for _, e := range a.History() {
			dest := ""
			if e.Destination != 0 {
				dest = fmt.Sprintf("%d", e.Destination)
			}
			transactionLines = append(transactionLines, strings.Join([]string{
				fmt.Sprintf("%d", a.Number()),
				string(e.Type),
				e.Amount.String(),
				e.Time.Format(timeLayout),
				dest,
			}, fieldSep))
		}
	}

	if err := writeLines(s.path(accountsFile), accountLines); err != nil {
		return persistErr("save accounts", err)
	}
	if err := writeLines(s.path(investmentsFile), investmentLines); err != nil {
		return persistErr("save investments", err)
	}
	if err := writeLines(s.path(transactionsFile), transactionLines); err != nil {
		return persistErr("save transactions", err)
	}
	return nil
}

// writeLines writes lines atomically via a temp file and rename
func writeLines(path string, lines []string) error {
	tmp := path + ".tmp"
	content := ""
	if len(lines) > 0 {
		content = strings.Join(lines, "\n") + "\n"
	}
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
