package sql

import "fmt"

// Parse parses one SQL statement. Multi-statement scripts are not
// supported; a single trailing semicolon is tolerated.
func Parse(query string) (Statement, error) {
	tokens, err := tokenize(query)
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens}
	stmt, err := p.parseStatement()
	if err != nil {
		return nil, err
	}

	if p.peek().isSymbol(";") {
		p.next()
	}
	if p.peek().kind != tokenEOF {
		return nil, fmt.Errorf("unexpected trailing input near %q", p.peek().text)
	}
	return stmt, nil
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.kind != tokenEOF {
		p.pos++
	}
	return t
}

func (p *parser) expectKeyword(word string) error {
	if !p.peek().isKeyword(word) {
		return fmt.Errorf("expected %s, got %q", word, p.peek().text)
	}
	p.next()
	return nil
}

func (p *parser) expectSymbol(sym string) error {
	if !p.peek().isSymbol(sym) {
		return fmt.Errorf("expected %q, got %q", sym, p.peek().text)
	}
	p.next()
	return nil
}

func (p *parser) expectIdent() (string, error) {
	if p.peek().kind != tokenIdent {
		return "", fmt.Errorf("expected identifier, got %q", p.peek().text)
	}
	return p.next().text, nil
}

func (p *parser) parseStatement() (Statement, error) {
	switch {
	case p.peek().isKeyword("CREATE"):
		return p.parseCreateTable()
	case p.peek().isKeyword("INSERT"):
		return p.parseInsert()
	case p.peek().isKeyword("SELECT"):
		return p.parseSelect()
	}
	return nil, fmt.Errorf("unsupported statement near %q (supported: CREATE TABLE, INSERT INTO, SELECT)", p.peek().text)
}

func (p *parser) parseCreateTable() (Statement, error) {
	p.next() // CREATE
	if err := p.expectKeyword("TABLE"); err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectSymbol("("); err != nil {
		return nil, err
	}

	columns := []ColumnDef{}
	for {
		col_name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		col_type, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		columns = append(columns, ColumnDef{Name: col_name, Type: col_type})

		if p.peek().isSymbol(",") {
			p.next()
			continue
		}
		break
	}

	if err := p.expectSymbol(")"); err != nil {
		return nil, err
	}
	return &CreateTableStatement{Name: name, Columns: columns}, nil
}

func (p *parser) parseInsert() (Statement, error) {
	p.next() // INSERT
	if err := p.expectKeyword("INTO"); err != nil {
		return nil, err
	}
	table, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("VALUES"); err != nil {
		return nil, err
	}
	if err := p.expectSymbol("("); err != nil {
		return nil, err
	}

	values := []Expression{}
	for {
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		values = append(values, expr)

		if p.peek().isSymbol(",") {
			p.next()
			continue
		}
		break
	}

	if err := p.expectSymbol(")"); err != nil {
		return nil, err
	}
	return &InsertStatement{Table: table, Values: values}, nil
}

func (p *parser) parseSelect() (Statement, error) {
	p.next() // SELECT

	columns := []Expression{}
	if p.peek().isSymbol("*") {
		p.next()
		columns = append(columns, &Literal{Kind: LiteralIdentifier, Text: "*"})
	} else {
		for {
			expr, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			columns = append(columns, expr)

			if p.peek().isSymbol(",") {
				p.next()
				continue
			}
			break
		}
	}

	if err := p.expectKeyword("FROM"); err != nil {
		return nil, err
	}
	table, err := p.expectIdent()
	if err != nil {
		return nil, err
	}

	var where Expression
	if p.peek().isKeyword("WHERE") {
		p.next()
		where, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}

	return &SelectStatement{Table: table, Columns: columns, Where: where}, nil
}

// Expression grammar, loosest binding first:
//
//	expression = comparison { "=" comparison }
//	comparison = additive { ("<" | ">") additive }
//	additive   = primary { ("+" | "||") primary }
//	primary    = literal | identifier | "(" expression ")"
func (p *parser) parseExpression() (Expression, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.peek().isSymbol("=") {
		p.next()
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{Op: OpEqual, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseComparison() (Expression, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for p.peek().isSymbol("<") || p.peek().isSymbol(">") {
		op := OpLess
		if p.next().text == ">" {
			op = OpGreater
		}
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAdditive() (Expression, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.peek().isSymbol("+") || p.peek().isSymbol("||") {
		op := OpAdd
		if p.next().text == "||" {
			op = OpConcat
		}
		right, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parsePrimary() (Expression, error) {
	t := p.peek()
	switch {
	case t.kind == tokenString:
		p.next()
		return &Literal{Kind: LiteralString, Text: t.text}, nil
	case t.kind == tokenNumber:
		p.next()
		return &Literal{Kind: LiteralInteger, Text: t.text}, nil
	case t.kind == tokenIdent:
		p.next()
		return &Literal{Kind: LiteralIdentifier, Text: t.text}, nil
	case t.isSymbol("("):
		p.next()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if err := p.expectSymbol(")"); err != nil {
			return nil, err
		}
		return expr, nil
	}
	return nil, fmt.Errorf("expected expression, got %q", t.text)
}
