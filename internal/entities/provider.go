package entities

import "fmt"

// Book is one row of the book table.
type Book struct {
	ID   int64  `gorm:"column:_id;primaryKey;autoIncrement:false" json:"id"`
	Name string `gorm:"column:name" json:"name"`
}

func (Book) TableName() string {
	return "book"
}

func (b Book) String() string {
	return fmt.Sprintf("Book{id=%d, name=%q}", b.ID, b.Name)
}

// User is one row of the user table. Sex is stored as 1 for male, 0 otherwise.
type User struct {
	ID     int64  `gorm:"column:_id;primaryKey;autoIncrement:false" json:"id"`
	Name   string `gorm:"column:name" json:"name"`
	IsMale bool   `gorm:"column:sex" json:"is_male"`
}

func (User) TableName() string {
	return "user"
}

func (u User) String() string {
	return fmt.Sprintf("User{id=%d, name=%q, male=%t}", u.ID, u.Name, u.IsMale)
}
