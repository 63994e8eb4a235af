package sampleapp

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS user (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT UNIQUE NOT NULL,
	password BLOB NOT NULL
);

CREATE TABLE IF NOT EXISTS post (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	author_id INTEGER NOT NULL REFERENCES user (id),
	created INTEGER NOT NULL,
	title TEXT NOT NULL,
	body TEXT NOT NULL
);`

// ErrNotFound is returned for lookups of rows that do not exist.
var ErrNotFound = errors.New("not found")

// ErrUsernameTaken is returned when registering a username that exists.
var ErrUsernameTaken = errors.New("username already registered")

type User struct {
	ID           int64
	Username     string
	PasswordHash []byte
}

type Post struct {
	ID       int64     `json:"id"`
	AuthorID int64     `json:"authorId"`
	Author   string    `json:"author"`
	Created  time.Time `json:"created"`
	Title    string    `json:"title"`
	Body     string    `json:"body"`
}

// Store is the blog's sqlite-backed persistence layer.
type Store struct {
	db *sql.DB
}

// OpenStore opens (and if necessary creates) the database at dsn. The dsn
// ":memory:" gives a private throwaway database.
func OpenStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// In-memory sqlite databases are per-connection; limiting the pool to one
	// connection keeps the schema visible to every query.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) CreateUser(username string, passwordHash []byte) (int64, error) {
	if _, err := s.UserByName(username); err == nil {
		return 0, ErrUsernameTaken
	}
	res, err := s.db.Exec(`INSERT INTO user (username, password) VALUES (?, ?)`, username, passwordHash)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) UserByName(username string) (User, error) {
	var u User
	err := s.db.QueryRow(`SELECT id, username, password FROM user WHERE username = ?`, username).
		Scan(&u.ID, &u.Username, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

func (s *Store) CreatePost(authorID int64, title, body string) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO post (author_id, created, title, body) VALUES (?, ?, ?, ?)`,
		authorID, time.Now().Unix(), title, body,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) Posts() ([]Post, error) {
	rows, err := s.db.Query(
		`SELECT p.id, p.author_id, u.username, p.created, p.title, p.body
		 FROM post p JOIN user u ON p.author_id = u.id
		 ORDER BY p.created DESC, p.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var posts []Post
	for rows.Next() {
		p, err := scanPost(rows.Scan)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (s *Store) Post(id int64) (Post, error) {
	row := s.db.QueryRow(
		`SELECT p.id, p.author_id, u.username, p.created, p.title, p.body
		 FROM post p JOIN user u ON p.author_id = u.id
		 WHERE p.id = ?`, id)
	p, err := scanPost(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Post{}, ErrNotFound
	}
	return p, err
}

func (s *Store) UpdatePost(id int64, title, body string) error {
	res, err := s.db.Exec(`UPDATE post SET title = ?, body = ? WHERE id = ?`, title, body, id)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

func (s *Store) DeletePost(id int64) error {
	res, err := s.db.Exec(`DELETE FROM post WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

func scanPost(scan func(dest ...any) error) (Post, error) {
	var p Post
	var created int64
	if err := scan(&p.ID, &p.AuthorID, &p.Author, &created, &p.Title, &p.Body); err != nil {
		return Post{}, err
	}
	p.Created = time.Unix(created, 0).UTC()
	return p, nil
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
