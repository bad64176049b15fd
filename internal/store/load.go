package store

import (
	"bufio"
	"errors"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/devcoelho/gobank/internal/bank"
	"github.com/devcoelho/gobank/internal/model"
)

// Load reconstructs the registry from the snapshot files into b, which must
// be empty. The steps run in dependency order: clients and addresses first,
// then accounts resolved to clients by tax id, then investments and
// transactions resolved to accounts by number. Restored records go through
// the rehydrate path, not the live operations, since they are historical facts,
// already validated when written.
func (s *Store) Load(b *bank.Bank) error {
	clients, err := s.loadClients(b)
	if err != nil {
		return err
	}
	accounts, err := s.loadAccounts(b, clients)
	if err != nil {
		return err
	}
	if err := s.loadInvestments(accounts); err != nil {
		return err
	}
	return s.loadTransactions(accounts)
}

// loadClients reads CLIENT and ADDRESS records and registers the clients.
// Addresses attach to the client named by tax id; an address for an unknown
// client is skipped with a warning.
func (s *Store) loadClients(b *bank.Bank) (map[string]*model.Client, error) {
	byCPF := make(map[string]*model.Client)

	lines, err := readLines(s.path(clientsFile))
	if err != nil {
		return nil, persistErr("load clients", err)
	}

	var registered []*model.Client
	for n, line := range lines {
		parts := strings.Split(line, fieldSep)
		switch parts[0] {
		case "CLIENT":
			if len(parts) < 3 {
				log.Printf("store: %s line %d: malformed CLIENT record, skipping", clientsFile, n+1)
				continue
			}
			c := &model.Client{Name: parts[1], CPF: parts[2]}
			if _, dup := byCPF[c.CPF]; dup {
				log.Printf("store: %s line %d: duplicate client %s, skipping", clientsFile, n+1, c.CPF)
				continue
			}
			byCPF[c.CPF] = c
			registered = append(registered, c)
		case "ADDRESS":
			if len(parts) < 11 {
				log.Printf("store: %s line %d: malformed ADDRESS record, skipping", clientsFile, n+1)
				continue
			}
			c, ok := byCPF[parts[1]]
			if !ok {
				log.Printf("store: %s line %d: address for unknown client %s, skipping", clientsFile, n+1, parts[1])
				continue
			}
			state, _ := model.ParseState(parts[7])
			c.Addresses = append(c.Addresses, model.Address{
				Street:           parts[2],
				Number:           parts[3],
				Complement:       parts[4],
				Neighborhood:     parts[5],
				City:             parts[6],
				State:            state,
				CEP:              parts[8],
				Category:         parts[9],
				LocationCategory: parts[10],
			})
		default:
			log.Printf("store: %s line %d: unknown record kind %q, skipping", clientsFile, n+1, parts[0])
		}
	}

	for _, c := range registered {
		b.RehydrateClient(c)
	}
	return byCPF, nil
}

// loadAccounts reads account records, resolves owners by tax id and
// rehydrates the matching account variant
func (s *Store) loadAccounts(b *bank.Bank, clients map[string]*model.Client) (map[int64]*model.Account, error) {
	byNumber := make(map[int64]*model.Account)

	lines, err := readLines(s.path(accountsFile))
	if err != nil {
		return nil, persistErr("load accounts", err)
	}

	for n, line := range lines {
		parts := strings.Split(line, fieldSep)
		if len(parts) < 7 {
			log.Printf("store: %s line %d: malformed account record, skipping", accountsFile, n+1)
			continue
		}

		number, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil || number <= 0 {
			log.Printf("store: %s line %d: bad account number %q, skipping", accountsFile, n+1, parts[0])
			continue
		}
		balance, err := decimal.NewFromString(parts[2])
		if err != nil {
			log.Printf("store: %s line %d: bad balance %q, skipping", accountsFile, n+1, parts[2])
			continue
		}
		kind, ok := model.ParseAccountKind(parts[4])
		if !ok {
			log.Printf("store: %s line %d: unknown account kind %q, skipping", accountsFile, n+1, parts[4])
			continue
		}
		rate, err := decimal.NewFromString(parts[5])
		if err != nil {
			log.Printf("store: %s line %d: bad rate %q, skipping", accountsFile, n+1, parts[5])
			continue
		}
		opened, err := time.ParseInLocation(timeLayout, parts[6], time.Local)
		if err != nil {
			log.Printf("store: %s line %d: bad opening timestamp %q, skipping", accountsFile, n+1, parts[6])
			continue
		}

		client, ok := clients[parts[3]]
		if !ok {
			log.Printf("store: %s line %d: account %d references unknown client %s, skipping", accountsFile, n+1, number, parts[3])
			continue
		}

		a := model.RehydrateAccount(client, kind, number, parts[1], balance, rate, opened, b.Clock())
		if err := b.RehydrateAccount(a); err != nil {
			log.Printf("store: %s line %d: cannot restore account %d: %v, skipping", accountsFile, n+1, number, err)
			continue
		}
		byNumber[number] = a
	}
	return byNumber, nil
}

// loadInvestments re-creates named investments on their accounts. The
// persisted balance is already net of each investment, so restoration
// assigns state directly instead of re-running the live sufficiency check.
func (s *Store) loadInvestments(accounts map[int64]*model.Account) error {
	lines, err := readLines(s.path(investmentsFile))
	if err != nil {
		return persistErr("load investments", err)
	}

	for n, line := range lines {
		parts := strings.Split(line, fieldSep)
		if len(parts) < 4 {
			log.Printf("store: %s line %d: malformed investment record, skipping", investmentsFile, n+1)
			continue
		}
		number, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			log.Printf("store: %s line %d: bad account number %q, skipping", investmentsFile, n+1, parts[0])
			continue
		}
		principal, err := decimal.NewFromString(parts[2])
		if err != nil {
			log.Printf("store: %s line %d: bad principal %q, skipping", investmentsFile, n+1, parts[2])
			continue
		}
		rate, err := decimal.NewFromString(parts[3])
		if err != nil {
			log.Printf("store: %s line %d: bad rate %q, skipping", investmentsFile, n+1, parts[3])
			continue
		}

		a, ok := accounts[number]
		if !ok {
			log.Printf("store: %s line %d: investment references unknown account %d, skipping", investmentsFile, n+1, number)
			continue
		}
		if a.Kind() != model.AccountInvestment {
			log.Printf("store: %s line %d: account %d is not an investment account, skipping", investmentsFile, n+1, number)
			continue
		}
		a.RehydrateInvestment(parts[1], principal, rate)
	}
	return nil
}

// loadTransactions appends historical entries in file order
func (s *Store) loadTransactions(accounts map[int64]*model.Account) error {
	lines, err := readLines(s.path(transactionsFile))
	if err != nil {
		return persistErr("load transactions", err)
	}

	for n, line := range lines {
		parts := strings.Split(line, fieldSep)
		if len(parts) < 4 {
			log.Printf("store: %s line %d: malformed transaction record, skipping", transactionsFile, n+1)
			continue
		}
		number, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			log.Printf("store: %s line %d: bad account number %q, skipping", transactionsFile, n+1, parts[0])
			continue
		}
		entryType, ok := model.ParseEntryType(parts[1])
		if !ok {
			log.Printf("store: %s line %d: unknown entry type %q, skipping", transactionsFile, n+1, parts[1])
			continue
		}
		amount, err := decimal.NewFromString(parts[2])
		if err != nil {
			log.Printf("store: %s line %d: bad amount %q, skipping", transactionsFile, n+1, parts[2])
			continue
		}
		at, err := time.ParseInLocation(timeLayout, parts[3], time.Local)
		if err != nil {
			log.Printf("store: %s line %d: bad timestamp %q, skipping", transactionsFile, n+1, parts[3])
			continue
		}

		var dest int64
		if len(parts) >= 5 && parts[4] != "" {
			dest, err = strconv.ParseInt(parts[4], 10, 64)
			if err != nil {
				log.Printf("store: %s line %d: bad destination %q, skipping", transactionsFile, n+1, parts[4])
				continue
			}
			if _, ok := accounts[dest]; !ok {
				log.Printf("store: %s line %d: transaction references unknown destination %d, skipping", transactionsFile, n+1, dest)
				continue
			}
		}

		a, ok := accounts[number]
		if !ok {
			log.Printf("store: %s line %d: transaction references unknown account %d, skipping", transactionsFile, n+1, number)
			continue
		}
		a.RehydrateEntry(model.Entry{
			ID:          uuid.New(),
			Type:        entryType,
			Amount:      amount,
			Time:        at,
			Account:     number,
			Destination: dest,
		})
	}
	return nil
}

// readLines reads all non-empty lines of path. A missing file is not an
// error: it means zero records of that kind.
func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}
